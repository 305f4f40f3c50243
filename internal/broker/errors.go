package broker

import "errors"

var ErrBrokerClosed = errors.New("broker: closed")
