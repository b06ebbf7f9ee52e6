//go:build !linux

package main

import (
	"errors"

	"github.com/rs/zerolog"

	"waybind/internal/loop"
	"waybind/internal/seat"
)

func runDevices(*loop.Loop, *seat.Seat, zerolog.Logger) (func(), error) {
	return nil, errors.New("evdev input is only available on linux")
}
