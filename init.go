package main

import (
	"math/rand"
	"time"
)

func init() { // nolint:gochecknoinits
	rand.Seed(time.Now().UnixNano())
}
