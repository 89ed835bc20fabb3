package model

import "errors"

var (
	ErrNotFound        = errors.New("not found")
	ErrSlotTaken       = errors.New("slot already booked")
	ErrDraftIncomplete = errors.New("booking draft incomplete")
)
