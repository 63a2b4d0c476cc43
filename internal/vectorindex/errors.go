package vectorindex

import "errors"

var (
	ErrEmptyText         = errors.New("empty text")
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")
)
