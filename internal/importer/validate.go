package importer

import (
	"bytes"
	_ "embed"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/kloir-z/gantt/internal/calendar"
	"github.com/kloir-z/gantt/internal/domain"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed snapshot.schema.json
var schemaSource []byte

const schemaURL = "https://gantt.local/snapshot.schema.json"

var (
	schemaOnce     sync.Once
	compiledSchema *jsonschema.Schema
	schemaErr      error
)

func snapshotSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaURL, bytes.NewReader(schemaSource)); err != nil {
			schemaErr = fmt.Errorf("loading snapshot schema: %w", err)
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaURL)
	})
	return compiledSchema, schemaErr
}

// validateStructure checks decoded JSON against the embedded schema.
func validateStructure(doc any) []Problem {
	schema, err := snapshotSchema()
	if err != nil {
		return []Problem{{Message: err.Error()}}
	}
	err = schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []Problem{{Message: err.Error()}}
	}
	var out []Problem
	collectSchemaErrors(&out, ve)
	return out
}

func collectSchemaErrors(out *[]Problem, err *jsonschema.ValidationError) {
	if len(err.Causes) == 0 {
		*out = append(*out, Problem{Path: pointerToPath(err.InstanceLocation), Message: err.Message})
		return
	}
	for _, cause := range err.Causes {
		collectSchemaErrors(out, cause)
	}
}

func pointerToPath(ptr string) string {
	ptr = strings.TrimPrefix(strings.TrimPrefix(ptr, "#"), "/")
	if ptr == "" {
		return ""
	}
	parts := strings.Split(ptr, "/")
	for i, p := range parts {
		parts[i] = strings.NewReplacer("~1", "/", "~0", "~").Replace(p)
	}
	return strings.Join(parts, ".")
}

// ValidateFile checks what the schema cannot express: every data key
// matches its row id, row numbers are unique, and each weekday belongs
// to at most one off-day rule. Returns every problem found.
func ValidateFile(f *File) []Problem {
	var probs []Problem

	if f.DateFormat != nil {
		if _, err := calendar.ParseFormat(*f.DateFormat); err != nil {
			probs = append(probs, Problem{Path: "dateFormat", Message: err.Error()})
		}
	}

	seenNo := make(map[int]string)
	for key, rec := range f.Data {
		path := "data." + key
		if rec.ID != key {
			probs = append(probs, Problem{Path: path + ".id", Message: fmt.Sprintf("id %q does not match its key", rec.ID)})
		}
		if !domain.ValidRowKinds[rec.RowType] {
			probs = append(probs, Problem{Path: path + ".rowType", Message: fmt.Sprintf("unknown row type %q", rec.RowType)})
		}
		if rec.No > 0 {
			if other, dup := seenNo[rec.No]; dup {
				probs = append(probs, Problem{Path: path + ".no", Message: fmt.Sprintf("row number %d also used by %s", rec.No, other)})
			} else {
				seenNo[rec.No] = key
			}
		}
	}

	claimed := make(map[int]string)
	for key, rule := range f.RegularDaysOffSetting {
		for _, d := range rule.Days {
			if other, dup := claimed[d]; dup {
				probs = append(probs, Problem{
					Path:    "regularDaysOffSetting." + key + ".days",
					Message: "weekday " + strconv.Itoa(d) + " is already in rule " + other,
				})
				continue
			}
			claimed[d] = key
		}
	}
	return probs
}
