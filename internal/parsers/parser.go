package parsers

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/xkilldash9x/verdict-cli/api/schemas"
)

// ErrUnsupportedCategory is returned by every method of the parser handed out
// for a category this engine does not recognize. Hitting it means the caller
// is misconfigured, not that the payload is bad.
var ErrUnsupportedCategory = errors.New("unsupported analysis category")

// ErrFindingNotFound is returned by Detail when no finding carries the
// requested id.
var ErrFindingNotFound = errors.New("finding not found")

// Parser is the shared contract every category parser satisfies.
//
// Parse is stateless: it re-derives the full ordered finding list from the
// immutable payload snapshot on every call, so repeated calls yield
// structurally identical output. Tools lists the payload's tool names in
// wire order, from the payload structure rather than from findings, so a
// tool whose issue list lives in an external artifact still shows up.
// ToolData aggregates one tool's slice of the Parse output plus its
// status/count/metric metadata, and Detail produces the drill-down view for
// a single finding id.
type Parser interface {
	Category() schemas.Category
	Parse() ([]schemas.Finding, error)
	Tools() ([]string, error)
	ToolData(tool string) (schemas.ToolSummary, error)
	Detail(id string) (schemas.DetailView, error)
}

// ForCategory selects the parser for one analysis category over that
// category's raw service payload. Unknown categories get a parser whose
// every method reports ErrUnsupportedCategory.
func ForCategory(category schemas.Category, payload json.RawMessage) Parser {
	switch category {
	case schemas.CategoryStatic:
		return NewStaticParser(payload)
	case schemas.CategoryDynamic:
		return NewDynamicParser(payload)
	case schemas.CategoryPerformance:
		return NewPerformanceParser(payload)
	case schemas.CategoryAI:
		return NewAIParser(payload)
	default:
		return unsupportedParser{category: category}
	}
}

// ForTask is the convenience entry point over a whole task snapshot: it pulls
// the category's sub-object out of the services map (an absent category
// parses as an empty object) and dispatches to ForCategory.
func ForTask(category schemas.Category, task schemas.TaskPayload) Parser {
	return ForCategory(category, task.Service(category))
}

// unsupportedParser is the stand-in for categories this engine does not
// implement. It exists so the factory is total; any actual use is a
// configuration error surfaced through ErrUnsupportedCategory.
type unsupportedParser struct {
	category schemas.Category
}

func (p unsupportedParser) Category() schemas.Category { return p.category }

func (p unsupportedParser) Parse() ([]schemas.Finding, error) {
	return nil, fmt.Errorf("parse %q: %w", p.category, ErrUnsupportedCategory)
}

func (p unsupportedParser) Tools() ([]string, error) {
	return nil, fmt.Errorf("tools %q: %w", p.category, ErrUnsupportedCategory)
}

func (p unsupportedParser) ToolData(string) (schemas.ToolSummary, error) {
	return schemas.ToolSummary{}, fmt.Errorf("tool data %q: %w", p.category, ErrUnsupportedCategory)
}

func (p unsupportedParser) Detail(string) (schemas.DetailView, error) {
	return schemas.DetailView{}, fmt.Errorf("detail %q: %w", p.category, ErrUnsupportedCategory)
}

// detailFor finds the identified finding in a parsed list and renders the
// generic detail view shared by the dynamic, performance and AI parsers.
// The static parser layers its language subtitle and code/remediation
// extraction on top of its own variant.
func detailFor(findings []schemas.Finding, id string, subtitle func(schemas.Finding) string) (schemas.DetailView, error) {
	for _, f := range findings {
		if f.ID != id {
			continue
		}
		desc := stringField(f.Raw, "description", "details")
		if desc == "" {
			desc = f.Message
		}
		return schemas.DetailView{
			ID:          f.ID,
			Title:       f.Message,
			Subtitle:    subtitle(f),
			Severity:    f.Severity,
			Description: desc,
			Location:    f.LocationString(),
			Code:        stringField(f.Raw, "code", "context"),
			Remediation: stringField(f.Raw, "remediation", "solution"),
		}, nil
	}
	return schemas.DetailView{}, fmt.Errorf("finding %q: %w", id, ErrFindingNotFound)
}
