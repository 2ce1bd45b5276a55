package service

import "errors"

var ErrItemNotInCart = errors.New("item not in cart")
