package orchestrator

import "errors"

var errEmptySummary = errors.New("empty summary")
