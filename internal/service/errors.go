package service

import "errors"

var (
	ErrForbidden          = errors.New("caller is not allowed to perform this action")
	ErrEmptySelection     = errors.New("no lines selected")
	ErrInvalidQuantity    = errors.New("quantity must be at least 1")
	ErrInvalidProduct     = errors.New("product is missing required fields")
	ErrUnmappedCategory   = errors.New("category has no listing collection")
	ErrAlreadyModerated   = errors.New("product has already been moderated")
	ErrPaymentNotPending  = errors.New("payment is not pending")
	ErrPaymentNotSettled  = errors.New("payment has not been approved or declined")
	ErrPaymentNotApproved = errors.New("payment is not approved")
	ErrAlreadyLiquidated  = errors.New("payment has already been liquidated")
	ErrIncompleteAddress  = errors.New("shipping address is incomplete")
	ErrOrderDecided       = errors.New("order has already been decided")
	ErrOrderNotApproved   = errors.New("order is not approved")
	ErrNotOrderOwner      = errors.New("caller does not own this order")
	ErrNotOrderSeller     = errors.New("caller is not the seller of this order")
	ErrEmptyMessage       = errors.New("notification message is empty")
)
