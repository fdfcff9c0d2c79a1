package render

import (
	"image/color"
	"net/http"
	"strconv"
	"strings"
	"time"
)

type Format string

const (
	FormatPNG Format = "png"
	FormatSVG Format = "svg"
)

func (f Format) ContentType() string {
	if f == FormatSVG {
		return "image/svg+xml"
	}
	return "image/png"
}

// PictureParams control how a chart result is drawn. Width and Height are in
// CSS pixels.
type PictureParams struct {
	Width     float64
	Height    float64
	Title     string
	Format    Format
	Location  *time.Location
	LineColor color.RGBA
	BgColor   color.RGBA
	LineWidth float64
	Grid      bool
}

var DefaultParams = PictureParams{
	Width:     800,
	Height:    400,
	Format:    FormatPNG,
	Location:  time.UTC,
	LineColor: colors["blue"],
	BgColor:   colors["white"],
	LineWidth: 1.2,
	Grid:      true,
}

var colors = map[string]color.RGBA{
	"black":   {0x00, 0x00, 0x00, 0xff},
	"white":   {0xff, 0xff, 0xff, 0xff},
	"blue":    {0x64, 0x64, 0xff, 0xff},
	"green":   {0x00, 0xc8, 0x00, 0xff},
	"red":     {0xc8, 0x00, 0x32, 0xff},
	"purple":  {0xc8, 0x64, 0xff, 0xff},
	"orange":  {0xff, 0xa5, 0x00, 0xff},
	"grey":    {0xaf, 0xaf, 0xaf, 0xff},
	"gray":    {0xaf, 0xaf, 0xaf, 0xff},
	"magenta": {0xff, 0x00, 0xff, 0xff},
}

// GetPictureParams reads the picture parameters of a render request.
func GetPictureParams(r *http.Request) PictureParams {
	return PictureParams{
		Width:     getFloat64(r.FormValue("width"), DefaultParams.Width),
		Height:    getFloat64(r.FormValue("height"), DefaultParams.Height),
		Title:     r.FormValue("title"),
		Format:    getFormat(r.FormValue("format"), DefaultParams.Format),
		Location:  getTimeZone(r.FormValue("tz"), DefaultParams.Location),
		LineColor: getColor(r.FormValue("color"), DefaultParams.LineColor),
		BgColor:   getColor(r.FormValue("bgcolor"), DefaultParams.BgColor),
		LineWidth: getFloat64(r.FormValue("lineWidth"), DefaultParams.LineWidth),
		Grid:      getBool(r.FormValue("grid"), DefaultParams.Grid),
	}
}

func getFloat64(s string, def float64) float64 {
	if s == "" {
		return def
	}
	n, err := strconv.ParseFloat(s, 64)
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func getBool(s string, def bool) bool {
	if s == "" {
		return def
	}
	b, err := strconv.ParseBool(s)
	if err != nil {
		return def
	}
	return b
}

func getFormat(s string, def Format) Format {
	switch Format(strings.ToLower(s)) {
	case FormatPNG:
		return FormatPNG
	case FormatSVG:
		return FormatSVG
	}
	return def
}

func getTimeZone(s string, def *time.Location) *time.Location {
	if s == "" {
		return def
	}
	tz, err := time.LoadLocation(s)
	if err != nil {
		return def
	}
	return tz
}

func getColor(s string, def color.RGBA) color.RGBA {
	if s == "" {
		return def
	}
	if c, ok := colors[strings.ToLower(s)]; ok {
		return c
	}
	return hexToRGBA(s, def)
}

func hexToRGBA(h string, def color.RGBA) color.RGBA {
	h = strings.TrimPrefix(h, "#")
	if len(h) != 6 && len(h) != 8 {
		return def
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return def
	}
	if len(h) == 6 {
		v = v<<8 | 0xff
	}
	return color.RGBA{uint8(v >> 24), uint8(v >> 16), uint8(v >> 8), uint8(v)}
}
