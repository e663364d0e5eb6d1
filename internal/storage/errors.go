package storage

import "errors"

// ErrDecisionNotFound возвращается, когда решение не найдено в журнале
var ErrDecisionNotFound = errors.New("decision not found")
