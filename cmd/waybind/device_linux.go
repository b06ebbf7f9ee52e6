//go:build linux

package main

import (
	"fmt"
	"strings"
	"sync"

	"github.com/holoplot/go-evdev"
	"github.com/rs/zerolog"

	"waybind/internal/keyboard"
	"waybind/internal/loop"
	"waybind/internal/seat"
)

// runDevices opens every keyboard-capable evdev device and feeds its key
// events onto the loop. The returned stop function closes all devices,
// which unblocks their read goroutines.
func runDevices(l *loop.Loop, s *seat.Seat, log zerolog.Logger) (stop func(), err error) {
	paths, err := evdev.ListDevicePaths()
	if err != nil {
		return nil, fmt.Errorf("listing input devices: %w", err)
	}

	var devices []*evdev.InputDevice
	var wg sync.WaitGroup
	for _, p := range paths {
		dev, err := evdev.Open(p.Path)
		if err != nil {
			log.Debug().Err(err).Str("path", p.Path).Msg("cannot open device")
			continue
		}
		if !isKeyboard(dev) {
			dev.Close()
			continue
		}
		id := identify(dev, p.Path)
		log.Info().Str("path", p.Path).Str("device", id).Msg("opened keyboard")
		devices = append(devices, dev)

		l.Post(func() {
			if err := s.AddDevice(keyboard.DeviceInfo{Identifier: id}); err != nil {
				log.Error().Err(err).Str("device", id).Msg("cannot attach keyboard")
			}
		})
		wg.Add(1)
		go func(dev *evdev.InputDevice, id string) {
			defer wg.Done()
			readLoop(l, s, dev, id, log)
		}(dev, id)
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no keyboard devices found")
	}

	return func() {
		for _, dev := range devices {
			dev.Close()
		}
		wg.Wait()
	}, nil
}

// readLoop pumps one device's key events onto the loop until the device
// errors out or is closed.
func readLoop(l *loop.Loop, s *seat.Seat, dev *evdev.InputDevice, id string, log zerolog.Logger) {
	for {
		ev, err := dev.ReadOne()
		if err != nil {
			log.Info().Err(err).Str("device", id).Msg("device read ended")
			l.Post(func() {
				if err := s.RemoveDevice(id); err != nil {
					log.Debug().Err(err).Str("device", id).Msg("detach failed")
				}
			})
			return
		}
		if ev.Type != evdev.EV_KEY || ev.Value == 2 {
			// Repeats are synthesized by the engine's own timer.
			continue
		}
		key := keyboard.KeyEvent{
			TimeMsec: uint32(ev.Time.Sec*1000) + uint32(ev.Time.Usec/1000),
			Code:     uint32(ev.Code),
			Pressed:  ev.Value == 1,
		}
		l.Post(func() { s.HandleKey(id, key) })
	}
}

func isKeyboard(dev *evdev.InputDevice) bool {
	for _, t := range dev.CapableTypes() {
		if t == evdev.EV_KEY {
			return true
		}
	}
	return false
}

// identify builds a stable device identifier in the vendor:product:name
// form.
func identify(dev *evdev.InputDevice, path string) string {
	name, err := dev.Name()
	if err != nil || name == "" {
		name = path
	}
	name = strings.ReplaceAll(name, " ", "_")
	id, err := dev.InputID()
	if err != nil {
		return name
	}
	return fmt.Sprintf("%d:%d:%s", id.Vendor, id.Product, name)
}
