package domain

import (
	"errors"
	"regexp"
	"slices"
	"strings"
	"unicode/utf8"
)

const (
	MaxCaptionLength   = 100
	MaxFontSize        = 60
	MaxOutlineSize     = 10
	MaxWhitespaceRatio = 1.0

	DefaultFont            = "impact"
	DefaultFontSize        = 42
	DefaultTextColor       = "white"
	DefaultOutlineColor    = "black"
	DefaultOutlineSize     = 2
	DefaultWhitespaceRatio = 0.25

	// OutlineNone disables the caption outline.
	OutlineNone = "none"
)

var (
	ErrCaptionTooLong   = errors.New("caption too long")
	ErrFontSize         = errors.New("font size out of range")
	ErrOutlineSize      = errors.New("outline size out of range")
	ErrWhitespaceRatio  = errors.New("whitespace ratio out of range")
	ErrUnknownFont      = errors.New("unknown font")
	ErrUnknownColor     = errors.New("unknown color")
	ErrUnknownAlignment = errors.New("unknown alignment")
)

var (
	Fonts      = []string{"impact", "arial"}
	Colors     = []string{"white", "black", "red", "green", "blue", "orange", "purple"}
	Alignments = []Alignment{AlignLeft, AlignCenter, AlignRight}
)

type Alignment string

const (
	AlignLeft   Alignment = "left"
	AlignCenter Alignment = "center"
	AlignRight  Alignment = "right"
)

type WhitespaceMode int

const (
	WhitespaceNone WhitespaceMode = iota
	WhitespaceTop
	WhitespaceBottom
	WhitespaceBoth
)

func (m WhitespaceMode) String() string {
	switch m {
	case WhitespaceTop:
		return "top"
	case WhitespaceBottom:
		return "bottom"
	case WhitespaceBoth:
		return "top and bottom"
	default:
		return "none"
	}
}

// With adds a band on the given side. Side must be WhitespaceTop or
// WhitespaceBottom; adding a side that is already present is a no-op.
func (m WhitespaceMode) With(side WhitespaceMode) WhitespaceMode {
	switch {
	case side == WhitespaceTop && m == WhitespaceNone:
		return WhitespaceTop
	case side == WhitespaceTop && m == WhitespaceBottom:
		return WhitespaceBoth
	case side == WhitespaceBottom && m == WhitespaceNone:
		return WhitespaceBottom
	case side == WhitespaceBottom && m == WhitespaceTop:
		return WhitespaceBoth
	}
	return m
}

func (m WhitespaceMode) HasTop() bool    { return m == WhitespaceTop || m == WhitespaceBoth }
func (m WhitespaceMode) HasBottom() bool { return m == WhitespaceBottom || m == WhitespaceBoth }

// FormattingState holds the caption preferences of one chat. Setters
// validate before touching any field, so a rejected value never leaves the
// state half-updated.
type FormattingState struct {
	TopText         string
	BottomText      string
	Alignment       Alignment
	Font            string
	FontSize        int
	TextColor       string
	OutlineColor    string
	OutlineSize     int
	Whitespace      WhitespaceMode
	WhitespaceRatio float64
}

func DefaultFormatting() FormattingState {
	f := FormattingState{}
	f.ResetFont()
	f.ResetWhitespace()
	return f
}

func (f *FormattingState) SetTopText(text string) error {
	if err := validateCaption(text); err != nil {
		return err
	}
	f.TopText = strings.TrimSpace(text)
	return nil
}

func (f *FormattingState) SetBottomText(text string) error {
	if err := validateCaption(text); err != nil {
		return err
	}
	f.BottomText = strings.TrimSpace(text)
	return nil
}

func (f *FormattingState) SetFont(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if !slices.Contains(Fonts, name) {
		return ErrUnknownFont
	}
	f.Font = name
	return nil
}

func (f *FormattingState) SetFontSize(size int) error {
	if size < 1 || size > MaxFontSize {
		return ErrFontSize
	}
	f.FontSize = size
	return nil
}

var hexColor = regexp.MustCompile(`^#[0-9a-f]{6}$`)

// IsColor reports whether name is a palette color or a #rrggbb value.
// name must already be lower-cased.
func IsColor(name string) bool {
	return slices.Contains(Colors, name) || hexColor.MatchString(name)
}

func (f *FormattingState) SetTextColor(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if !IsColor(name) {
		return ErrUnknownColor
	}
	f.TextColor = name
	return nil
}

func (f *FormattingState) SetOutlineColor(name string) error {
	name = strings.ToLower(strings.TrimSpace(name))
	if name != OutlineNone && !IsColor(name) {
		return ErrUnknownColor
	}
	f.OutlineColor = name
	return nil
}

func (f *FormattingState) SetOutlineSize(size int) error {
	if size < 0 || size > MaxOutlineSize {
		return ErrOutlineSize
	}
	f.OutlineSize = size
	return nil
}

func (f *FormattingState) SetAlignment(name string) error {
	a := Alignment(strings.ToLower(strings.TrimSpace(name)))
	if !slices.Contains(Alignments, a) {
		return ErrUnknownAlignment
	}
	f.Alignment = a
	return nil
}

func (f *FormattingState) SetWhitespaceRatio(ratio float64) error {
	if !(ratio > 0 && ratio <= MaxWhitespaceRatio) {
		return ErrWhitespaceRatio
	}
	f.WhitespaceRatio = ratio
	return nil
}

// AddWhitespace adds a band on side, optionally changing the ratio first.
func (f *FormattingState) AddWhitespace(side WhitespaceMode, ratio *float64) error {
	if ratio != nil {
		if err := f.SetWhitespaceRatio(*ratio); err != nil {
			return err
		}
	}
	f.Whitespace = f.Whitespace.With(side)
	return nil
}

// HasOutline reports whether an outline should be drawn at all.
func (f FormattingState) HasOutline() bool {
	return f.OutlineSize > 0 && f.OutlineColor != OutlineNone && f.OutlineColor != ""
}

func (f *FormattingState) ResetText() {
	f.TopText = ""
	f.BottomText = ""
}

func (f *FormattingState) ResetFont() {
	f.Alignment = AlignCenter
	f.Font = DefaultFont
	f.FontSize = DefaultFontSize
	f.TextColor = DefaultTextColor
	f.OutlineColor = DefaultOutlineColor
	f.OutlineSize = DefaultOutlineSize
}

func (f *FormattingState) ResetWhitespace() {
	f.Whitespace = WhitespaceNone
	f.WhitespaceRatio = DefaultWhitespaceRatio
}

func (f *FormattingState) Reset() {
	*f = DefaultFormatting()
}

func validateCaption(text string) error {
	if utf8.RuneCountInString(strings.TrimSpace(text)) > MaxCaptionLength {
		return ErrCaptionTooLong
	}
	return nil
}
