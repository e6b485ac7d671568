package domain

import (
	"fmt"
	"strings"

	"github.com/louisbranch/explodingdice/internal/core/probability"
	apperrors "github.com/louisbranch/explodingdice/internal/platform/errors"
	"github.com/louisbranch/explodingdice/internal/platform/errors/i18n"
	"github.com/modelcontextprotocol/go-sdk/mcp"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// Probability is an exact probability or probability difference.
type Probability struct {
	Exact   string  `json:"exact" jsonschema:"exact rational value as a/b"`
	Approx  float64 `json:"approx" jsonschema:"nearest float64 value"`
	Percent string  `json:"percent" jsonschema:"percentage formatted for the requested locale"`
}

// Rational is an exact value that is not a probability, such as a mean or a ratio.
type Rational struct {
	Exact  string  `json:"exact" jsonschema:"exact rational value as a/b"`
	Approx float64 `json:"approx" jsonschema:"nearest float64 value"`
}

// formatter renders values and errors for one request locale.
type formatter struct {
	locale  string
	printer *message.Printer
}

func newFormatter(locale string) formatter {
	tag := language.MustParse(i18n.BaseLocale)
	if trimmed := strings.TrimSpace(locale); trimmed != "" {
		if parsed, err := language.Parse(trimmed); err == nil {
			tag = parsed
		}
	}
	return formatter{locale: tag.String(), printer: message.NewPrinter(tag)}
}

func (f formatter) probability(v probability.Value) Probability {
	approx := v.Float64()
	return Probability{
		Exact:   v.String(),
		Approx:  approx,
		Percent: f.percent(v),
	}
}

func (f formatter) percent(v probability.Value) string {
	return f.printer.Sprintf("%.2f%%", v.Float64()*100)
}

func (f formatter) rational(v probability.Value) Rational {
	return Rational{Exact: v.String(), Approx: v.Float64()}
}

// toolError turns err into the error returned to the MCP client, rendered in
// the request locale and prefixed with its machine-readable code.
func (f formatter) toolError(err error) error {
	return fmt.Errorf("%s: %s", apperrors.GetCode(err), apperrors.LocalizedMessage(err, f.locale))
}

func textResult(text string) *mcp.CallToolResult {
	return &mcp.CallToolResult{
		Content: []mcp.Content{&mcp.TextContent{Text: text}},
	}
}

func orDefault(value, fallback int) int {
	if value == 0 {
		return fallback
	}
	return value
}

func orDefaults(values, fallback []int) []int {
	if len(values) == 0 {
		return append([]int(nil), fallback...)
	}
	return values
}
