package report

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/santhosh-tekuri/jsonschema/v6"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"telecheck-go/internal/types"
)

const (
	Unknown       = "不明"
	NoImprovement = "特になし"
	NoData        = "データなし"
)

//go:embed result.schema.json
var resultSchemaJSON []byte

var (
	resultSchema = mustCompileSchema(resultSchemaJSON, "result.schema.json")
	printer      = message.NewPrinter(language.English)
)

func mustCompileSchema(raw []byte, name string) *jsonschema.Schema {
	var schemaDoc any
	if err := json.Unmarshal(raw, &schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to parse embedded %s: %v", name, err))
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(name, schemaDoc); err != nil {
		panic(fmt.Sprintf("failed to add %s resource: %v", name, err))
	}
	sch, err := compiler.Compile(name)
	if err != nil {
		panic(fmt.Sprintf("failed to compile %s: %v", name, err))
	}
	return sch
}

// Summary is the headline view of an evaluation document.
type Summary struct {
	Owner       string            `json:"owner"`
	Verdict     string            `json:"verdict"`
	Improvement string            `json:"improvement"`
	Categories  []CategoryVerdict `json:"categories"`
}

type CategoryVerdict struct {
	Category types.Category `json:"category"`
	Overall  string         `json:"overall"`
}

type headline struct {
	Owner       string         `mapstructure:"担当者"`
	Verdict     string         `mapstructure:"評価"`
	Improvement any            `mapstructure:"改善ポイント"`
	Rest        map[string]any `mapstructure:",remain"`
}

type category struct {
	Overall string `mapstructure:"総合評価"`
}

// Summarize extracts the headline fields from doc, falling back to defaults
// for anything missing. Schema violations come back as warnings; they never
// fail the call.
func Summarize(doc *types.Document) (Summary, []string) {
	fields := doc.Map()
	warnings := Validate(fields)

	var h headline
	if err := decode(fields, &h); err != nil {
		warnings = append(warnings, "decode: "+err.Error())
	}

	s := Summary{
		Owner:       orDefault(h.Owner, Unknown),
		Verdict:     orDefault(h.Verdict, Unknown),
		Improvement: orDefault(render(h.Improvement), NoImprovement),
	}
	for _, c := range types.Categories() {
		overall := NoData
		if raw, ok := h.Rest[string(c)].(map[string]any); ok {
			var cat category
			if err := decode(raw, &cat); err == nil {
				overall = orDefault(cat.Overall, NoData)
			}
		}
		s.Categories = append(s.Categories, CategoryVerdict{Category: c, Overall: overall})
	}
	return s, warnings
}

// Validate checks fields against the expected result shape and returns one
// message per violation.
func Validate(fields map[string]any) []string {
	err := resultSchema.Validate(fields)
	if err == nil {
		return nil
	}
	ve, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []string{fmt.Sprintf("schema: %v", err)}
	}
	var errs []string
	collectSchemaErrors(ve, &errs)
	return errs
}

func collectSchemaErrors(ve *jsonschema.ValidationError, errs *[]string) {
	if len(ve.Causes) == 0 {
		loc := "/" + strings.Join(ve.InstanceLocation, "/")
		*errs = append(*errs, fmt.Sprintf("%s: %s", loc, ve.ErrorKind.LocalizedString(printer)))
		return
	}
	for _, c := range ve.Causes {
		collectSchemaErrors(c, errs)
	}
}

func decode(input any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(input)
}

// render flattens a free-form field into one line. List items are joined
// with 、 and nested values fall back to their JSON form.
func render(v any) string {
	switch v := v.(type) {
	case nil:
		return ""
	case string:
		return v
	case []any:
		parts := make([]string, 0, len(v))
		for _, item := range v {
			if s := strings.TrimSpace(render(item)); s != "" {
				parts = append(parts, s)
			}
		}
		return strings.Join(parts, "、")
	case map[string]any:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(data)
	default:
		return fmt.Sprint(v)
	}
}

func orDefault(v, def string) string {
	if v = strings.TrimSpace(v); v == "" {
		return def
	}
	return v
}

// Row is the spreadsheet line for one evaluation: owner, verdict and the
// full document as JSON.
func Row(s Summary, doc *types.Document) []string {
	return []string{s.Owner, s.Verdict, doc.JSON()}
}

// Text renders the summary for terminal output.
func (s Summary) Text() string {
	var b strings.Builder
	fmt.Fprintf(&b, "担当者: %s\n", s.Owner)
	fmt.Fprintf(&b, "評価: %s\n", s.Verdict)
	fmt.Fprintf(&b, "改善ポイント: %s\n", s.Improvement)
	for _, c := range s.Categories {
		fmt.Fprintf(&b, "  %s: %s\n", c.Category, c.Overall)
	}
	return b.String()
}
