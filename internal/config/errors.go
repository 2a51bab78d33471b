package config

import "errors"

var ErrMissingJWTSecret = errors.New("missing_jwt_secret")
