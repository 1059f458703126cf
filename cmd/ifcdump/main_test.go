package main

import (
	"bytes"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleFile = "../../testdata/sample_test.ifc"

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func TestDumpText(t *testing.T) {
	out, err := execute(t, sampleFile)
	require.NoError(t, err)
	assert.Contains(t, out, `IfcProject "Sample project"`)
	assert.Contains(t, out, `IfcBuildingStorey "Ground floor"`)
}

func TestDumpJSON(t *testing.T) {
	out, err := execute(t, sampleFile, "--format", "json", "--psets", "--quantities")
	require.NoError(t, err)

	var doc struct {
		Schema  string `json:"schema"`
		Project struct {
			Name string `json:"name"`
		} `json:"project"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "IFC2X3", doc.Schema)
	assert.Equal(t, "Sample project", doc.Project.Name)
}

func TestDumpEntity(t *testing.T) {
	out, err := execute(t, sampleFile, "--entity", "IfcDoor", "--psets")
	require.NoError(t, err)
	assert.Contains(t, out, `IfcDoor "Entrance door"`)
	assert.Contains(t, out, "Height = 2110")

	_, err = execute(t, sampleFile, "--entity", "IfcFlyingCarpet")
	assert.Error(t, err)
}

func TestDumpErrors(t *testing.T) {
	_, err := execute(t, "no_such_file.ifc")
	assert.Error(t, err)

	_, err = execute(t, sampleFile, "--format", "toml")
	assert.Error(t, err)
}
