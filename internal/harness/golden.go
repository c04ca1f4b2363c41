package harness

import (
	"testing"

	"github.com/sebdah/goldie/v2"

	"github.com/roach88/listfuse/internal/ir"
)

// GoldenDir holds golden files next to the scenarios they snapshot.
const GoldenDir = "testdata/scenarios/golden"

// Snapshot returns the canonical JSON written to a scenario's golden file:
// the scenario name and the plan document (null if no plan was produced).
func Snapshot(scenarioName string, result *Result) ([]byte, error) {
	var plan ir.IRValue = ir.IRNull{}
	if result.Plan != nil {
		plan = result.Plan.Document()
	}
	return ir.MarshalCanonical(ir.IRObject{
		"scenario_name": ir.IRString(scenarioName),
		"plan":          plan,
	})
}

// RunWithGolden executes a scenario and compares the plan against a golden
// file stored in testdata/scenarios/golden/{scenario.Name}.golden.
//
// To regenerate golden files, run:
//
//	go test ./internal/harness -update
//
// Returns error if scenario execution fails.
// Test failure (via goldie) occurs if the plan doesn't match the golden file.
func RunWithGolden(t *testing.T, scenario *Scenario) (*Result, error) {
	t.Helper()

	result, err := Run(scenario)
	if err != nil {
		return nil, err
	}
	if err := AssertGolden(t, scenario.Name, result); err != nil {
		return nil, err
	}
	return result, nil
}

// AssertGolden compares an existing result against its golden file.
func AssertGolden(t *testing.T, scenarioName string, result *Result) error {
	t.Helper()

	data, err := Snapshot(scenarioName, result)
	if err != nil {
		return err
	}

	g := goldie.New(t,
		goldie.WithFixtureDir(GoldenDir),
		goldie.WithNameSuffix(".golden"),
	)
	g.Assert(t, scenarioName, data)

	return nil
}
