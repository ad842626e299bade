package relayboard

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
)

const gpioBasePath = "/sys/class/gpio"

// SysfsDriver drives the relay board through the Linux GPIO sysfs
// interface. Each relay channel maps to one GPIO line, active high.
type SysfsDriver struct {
	pins     []uint
	basePath string
	logger   *zap.Logger
	opened   bool
}

func CreateSysfsDriver(pins []uint, logger *zap.Logger) (*SysfsDriver, error) {
	if len(pins) != NumOutputs {
		return nil, fmt.Errorf("expected %d gpio pins, got %d", NumOutputs, len(pins))
	}
	return &SysfsDriver{
		pins:     pins,
		basePath: gpioBasePath,
		logger:   logger.With(zap.String("driver", "gpio")),
	}, nil
}

func (d *SysfsDriver) Open() error {
	for _, pin := range d.pins {
		if err := d.exportPin(pin); err != nil {
			return err
		}
		if err := d.setDirection(pin, "out"); err != nil {
			return err
		}
		if err := d.writeValue(pin, false); err != nil {
			return err
		}
	}
	d.opened = true
	d.logger.Debug("gpio lines exported", zap.Uints("pins", d.pins))
	return nil
}

func (d *SysfsDriver) SetOutput(index int, asserted bool) error {
	if !d.opened {
		return errors.New("driver not open")
	}
	if index < 0 || index >= NumOutputs {
		return fmt.Errorf("relay index out of range: %d", index)
	}
	return d.writeValue(d.pins[index], asserted)
}

func (d *SysfsDriver) Close() error {
	if !d.opened {
		return nil
	}
	var firstErr error
	for _, pin := range d.pins {
		if err := d.writeValue(pin, false); err != nil && firstErr == nil {
			firstErr = err
		}
		if err := d.unexportPin(pin); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	d.opened = false
	return firstErr
}

func (d *SysfsDriver) exportPin(pin uint) error {
	pinPath := filepath.Join(d.basePath, fmt.Sprintf("gpio%d", pin))
	if _, err := os.Stat(pinPath); err == nil {
		return nil
	}
	if err := os.WriteFile(filepath.Join(d.basePath, "export"), []byte(fmt.Sprintf("%d", pin)), 0644); err != nil {
		return fmt.Errorf("export gpio%d: %w", pin, err)
	}
	// udev needs a moment to fix permissions on the new node
	time.Sleep(100 * time.Millisecond)
	return nil
}

func (d *SysfsDriver) unexportPin(pin uint) error {
	return os.WriteFile(filepath.Join(d.basePath, "unexport"), []byte(fmt.Sprintf("%d", pin)), 0644)
}

func (d *SysfsDriver) setDirection(pin uint, direction string) error {
	path := filepath.Join(d.basePath, fmt.Sprintf("gpio%d", pin), "direction")
	if err := os.WriteFile(path, []byte(direction), 0644); err != nil {
		return fmt.Errorf("set direction gpio%d: %w", pin, err)
	}
	return nil
}

func (d *SysfsDriver) writeValue(pin uint, asserted bool) error {
	value := "0"
	if asserted {
		value = "1"
	}
	path := filepath.Join(d.basePath, fmt.Sprintf("gpio%d", pin), "value")
	if err := os.WriteFile(path, []byte(value), 0644); err != nil {
		return fmt.Errorf("write gpio%d: %w", pin, err)
	}
	return nil
}
