package service

import (
	"errors"
	"fmt"
)

// FailureKind classifica as falhas de uma chamada de chat
type FailureKind string

const (
	FailureEmptyGeneration     FailureKind = "EMPTY_GENERATION"
	FailureCollaboratorFailure FailureKind = "COLLABORATOR_FAILURE"
	FailureInvalidRequest      FailureKind = "INVALID_REQUEST"
)

// Failure descreve uma falha tipada; Err é a causa original quando existe
type Failure struct {
	Kind FailureKind
	Err  error
}

func (f *Failure) Error() string {
	if f == nil {
		return ""
	}
	if f.Err == nil {
		return fmt.Sprintf("service: %s", f.Kind)
	}
	return fmt.Sprintf("service: %s: %v", f.Kind, f.Err)
}

func (f *Failure) Unwrap() error {
	if f == nil {
		return nil
	}
	return f.Err
}

// KindOf devolve o FailureKind de err, ou "" se err não for um *Failure
func KindOf(err error) FailureKind {
	var f *Failure
	if errors.As(err, &f) {
		return f.Kind
	}
	return ""
}

func newFailure(kind FailureKind, err error) *Failure {
	return &Failure{Kind: kind, Err: err}
}
