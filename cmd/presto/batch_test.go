package main

import (
	"bytes"
	"errors"
	"testing"

	"github.com/HackShare/presto/internal/executor"
	"github.com/HackShare/presto/internal/testutil"
)

func TestRunBatchExecutesAllStatements(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{}
	var out, errw bytes.Buffer
	runBatch(exec, "select 1;\nselect 2", executor.Aligned, "", &out, &errw, false)

	if len(exec.rendered) != 2 {
		t.Fatalf("expected 2 executions, got %v", exec.rendered)
	}
	testutil.AssertEqual(t, exec.rendered[0].text, "select 1")
	testutil.AssertEqual(t, exec.rendered[1].text, "select 2")
	testutil.AssertEqual(t, exec.rendered[0].interactive, false)
	testutil.AssertEqual(t, exec.handlesClosed, 2)
}

func TestRunBatchContinuesPastFailures(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{renderErr: errors.New("boom")}
	var out, errw bytes.Buffer
	runBatch(exec, "select 1; select 2;", executor.Aligned, "", &out, &errw, false)

	testutil.AssertEqual(t, len(exec.rendered), 2)
	testutil.AssertContains(t, errw.String(), "Error running command: boom")
}

func TestRunBatchSkipsSessionStatements(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{}
	var out, errw bytes.Buffer
	runBatch(exec, "use hive.web; select 1;", executor.Aligned, "", &out, &errw, false)

	if len(exec.started) != 1 || exec.started[0] != "select 1" {
		t.Fatalf("expected only the select to execute, got %v", exec.started)
	}
	testutil.AssertContains(t, errw.String(), "Ignoring session statement")
}

func TestRunBatchPassesFilterAndMode(t *testing.T) {
	t.Parallel()
	exec := &fakeExecutor{}
	var out, errw bytes.Buffer
	runBatch(exec, "select * from t", executor.Vertical, "x>1", &out, &errw, false)

	if len(exec.rendered) != 1 {
		t.Fatalf("expected 1 execution, got %v", exec.rendered)
	}
	testutil.AssertEqual(t, exec.rendered[0].mode, executor.Vertical)
	testutil.AssertEqual(t, exec.rendered[0].filterExpr, "x>1")
}

func TestParseOutputFormat(t *testing.T) {
	t.Parallel()
	mode, err := parseOutputFormat("aligned")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, mode, executor.Aligned)

	mode, err = parseOutputFormat("vertical")
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, mode, executor.Vertical)

	_, err = parseOutputFormat("csv")
	testutil.AssertError(t, err)
}

func TestRunRejectsConflictingModes(t *testing.T) {
	t.Parallel()
	err := run(&clientOptions{execute: "select 1", file: "x.sql", outputFormat: "aligned"})
	testutil.AssertError(t, err)
	testutil.AssertContains(t, err.Error(), "both --execute and --file")
}
