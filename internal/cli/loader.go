package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
	"cuelang.org/go/cue/load"
	"cuelang.org/go/cue/token"

	"github.com/roach88/listfuse/internal/compiler"
	"github.com/roach88/listfuse/internal/harness"
	"github.com/roach88/listfuse/internal/ir"
)

// LoadMode controls how errors are handled during mapping loading.
type LoadMode int

const (
	// LoadModeFailFast stops on the first error encountered.
	LoadModeFailFast LoadMode = iota
	// LoadModeCollectAll collects all errors before returning.
	LoadModeCollectAll
)

// LoadResult contains the results of loading mappings from a directory.
type LoadResult struct {
	Mappings  []ir.CollectionMapping
	CUEValue  cue.Value // The raw CUE value for additional processing
	FileCount int       // Number of CUE files found
}

// Mapping returns the mapping with the given name.
func (r *LoadResult) Mapping(name string) (ir.CollectionMapping, bool) {
	for _, m := range r.Mappings {
		if m.Name == name {
			return m, true
		}
	}
	return ir.CollectionMapping{}, false
}

// LoadError represents an error that occurred during mapping loading.
type LoadError struct {
	Code    string
	Message string
	Pos     token.Pos // CUE position if available
}

func (e *LoadError) Error() string {
	if e.Pos.IsValid() {
		return fmt.Sprintf("%s:%d:%d: %s: %s", e.Pos.Filename(), e.Pos.Line(), e.Pos.Column(), e.Code, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// LoadMappings loads and compiles the CUE mappings under `mapping:` in dir.
// If mode is LoadModeFailFast, returns on first error.
// If mode is LoadModeCollectAll, collects all errors.
func LoadMappings(dir string, mode LoadMode) (*LoadResult, []error) {
	var errs []error

	// Verify directory exists
	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("mappings directory not found: %s", dir)}}
	}
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("error accessing mappings directory: %v", err)}}
	}
	if !info.IsDir() {
		return nil, []error{&LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("not a directory: %s", dir)}}
	}

	// Find CUE files
	cueFiles, err := FindCUEFiles(dir)
	if err != nil {
		return nil, []error{&LoadError{Code: ErrCodeScanError, Message: fmt.Sprintf("error scanning directory: %v", err)}}
	}
	if len(cueFiles) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeNoFiles, Message: fmt.Sprintf("no CUE files found in %s", dir)}}
	}

	// Load CUE instances
	ctx := cuecontext.New()
	cfg := &load.Config{Dir: dir}
	instances := load.Instances([]string{"."}, cfg)
	if len(instances) == 0 {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: "no CUE instances loaded"}}
	}

	inst := instances[0]
	if inst.Err != nil {
		return nil, []error{&LoadError{Code: ErrCodeLoadFailed, Message: fmt.Sprintf("loading CUE files: %v", inst.Err)}}
	}

	value := ctx.BuildInstance(inst)
	if err := value.Err(); err != nil {
		return nil, []error{&LoadError{Code: ErrCodeBuildFailed, Message: fmt.Sprintf("building CUE value: %v", err)}}
	}

	result := &LoadResult{
		CUEValue:  value,
		FileCount: len(cueFiles),
	}

	mappingsVal := value.LookupPath(cue.ParsePath("mapping"))
	if mappingsVal.Exists() {
		iter, iterErr := mappingsVal.Fields()
		if iterErr != nil {
			errs = append(errs, &LoadError{Code: ErrCodeGeneric, Message: fmt.Sprintf("iterating mappings: %v", iterErr)})
			if mode == LoadModeFailFast {
				return result, errs
			}
		} else {
			for iter.Next() {
				m, compileErr := compiler.CompileMapping(iter.Value())
				if compileErr != nil {
					errs = append(errs, convertCompileError(compileErr, "mapping."+iter.Label()))
					if mode == LoadModeFailFast {
						return result, errs
					}
					continue
				}
				result.Mappings = append(result.Mappings, *m)
			}
		}
	}

	if len(result.Mappings) == 0 && len(errs) == 0 {
		errs = append(errs, &LoadError{Code: ErrCodeNoMappings, Message: "no mappings found"})
	}

	return result, errs
}

// FindCUEFiles walks the directory and returns all .cue file paths.
func FindCUEFiles(dir string) ([]string, error) {
	var files []string
	err := filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() && filepath.Ext(path) == ".cue" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}

// convertCompileError converts a compiler error to a LoadError with position info.
func convertCompileError(err error, context string) *LoadError {
	var compileErr *compiler.CompileError
	if errors.As(err, &compileErr) {
		return &LoadError{
			Code:    MapFieldToErrorCode(compileErr.Field),
			Message: fmt.Sprintf("%s: %s", context, compileErr.Message),
			Pos:     compileErr.Pos,
		}
	}
	// Anything else is a CUE evaluation error without a position.
	return &LoadError{
		Code:    ErrCodeSchema,
		Message: fmt.Sprintf("%s: %v", context, err),
	}
}

// resolveMapping loads dir and returns the named mapping, validated.
func resolveMapping(dir, name string) (ir.CollectionMapping, *LoadError) {
	result, errs := LoadMappings(dir, LoadModeFailFast)
	if len(errs) > 0 {
		var loadErr *LoadError
		if errors.As(errs[0], &loadErr) {
			return ir.CollectionMapping{}, loadErr
		}
		return ir.CollectionMapping{}, &LoadError{Code: ErrCodeGeneric, Message: errs[0].Error()}
	}

	m, ok := result.Mapping(name)
	if !ok {
		names := make([]string, len(result.Mappings))
		for i, m := range result.Mappings {
			names[i] = m.Name
		}
		sort.Strings(names)
		return ir.CollectionMapping{}, &LoadError{
			Code:    ErrCodeUnknownMapping,
			Message: fmt.Sprintf("mapping %q not found (have %v)", name, names),
		}
	}

	if verrs := compiler.Validate(&m); len(verrs) > 0 {
		return ir.CollectionMapping{}, &LoadError{Code: verrs[0].Code, Message: verrs[0].Error()}
	}
	return m, nil
}

// loadScenarioFile loads a scenario, reporting failures as LoadErrors.
func loadScenarioFile(path string) (*harness.Scenario, *LoadError) {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil, &LoadError{Code: ErrCodeNotFound, Message: fmt.Sprintf("scenario file not found: %s", path)}
	}
	s, err := harness.LoadScenario(path)
	if err != nil {
		return nil, &LoadError{Code: ErrCodeInvalidScenario, Message: err.Error()}
	}
	return s, nil
}

// parseOwner reads an owner id flag. Integers become IRInt, anything else
// is a string key.
func parseOwner(raw string) ir.IRValue {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ir.IRInt(n)
	}
	return ir.IRString(raw)
}

// Error code constants - unified across all CLI commands.
const (
	ErrCodeGeneric     = "E001" // Generic/unknown error
	ErrCodeScanError   = "E002" // Directory scan error
	ErrCodeNoFiles     = "E003" // No CUE files found
	ErrCodeLoadFailed  = "E004" // CUE load failed
	ErrCodeNotFound    = "E005" // Path not found
	ErrCodeBuildFailed = "E006" // CUE build failed
	ErrCodeWriteFailed = "E007" // File write error

	// Mapping errors
	ErrCodeMissingField   = "E101" // Required mapping field missing or not a string
	ErrCodeSchema         = "E102" // Mapping does not unify with the schema
	ErrCodeNoMappings     = "E103" // No mappings defined
	ErrCodeUnknownMapping = "E104" // --mapping names no loaded mapping

	// Scenario and flush errors
	ErrCodeInvalidScenario = "E301" // Scenario file failed to parse
	ErrCodeEditRejected    = "E302" // An edit was rejected while recording
	ErrCodeFlushFailed     = "E303" // Flush or SQL apply failed
	ErrCodeStoreFailed     = "E304" // Database could not be opened or read
)

// MapFieldToErrorCode maps a compiler error field to an error code.
func MapFieldToErrorCode(field string) string {
	switch field {
	case "table", "owner_column", "position_column", "element_column":
		return ErrCodeMissingField
	case "cue":
		return ErrCodeSchema
	default:
		return ErrCodeGeneric
	}
}
