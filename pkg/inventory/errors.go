package inventory

import "errors"

const invalidInventoryShapeMessage = "Invalid inventory data structure"

type ErrInvalidInventoryShape struct {
	error
}

func NewErrInvalidInventoryShape() *ErrInvalidInventoryShape {
	return &ErrInvalidInventoryShape{errors.New(invalidInventoryShapeMessage)}
}
