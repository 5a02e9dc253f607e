// Package i2cdev provides minimal register-level access to the I2C devices on
// the platform through the Linux /dev/i2c character device.
package i2cdev

import (
	"fmt"
	"os"
	"syscall"
)

// I2C_SLAVE ioctl from linux/i2c-dev.h.
const i2cSlave = 0x0703

// Device is a single I2C peripheral at a fixed address on a bus.
type Device struct {
	file *os.File
	addr byte
}

// Open opens the bus device (e.g. "/dev/i2c-1") and binds the slave address.
func Open(bus string, addr byte) (*Device, error) {
	f, err := os.OpenFile(bus, os.O_RDWR, 0)
	if err != nil {
		return nil, fmt.Errorf("open i2c bus %s: %w", bus, err)
	}
	if _, _, errno := syscall.Syscall(syscall.SYS_IOCTL, f.Fd(), i2cSlave, uintptr(addr)); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("bind i2c address 0x%02x: %w", addr, errno)
	}
	return &Device{file: f, addr: addr}, nil
}

func (d *Device) Close() error {
	return d.file.Close()
}

// WriteByte writes a single raw byte to the device.
func (d *Device) WriteByte(b byte) error {
	if _, err := d.file.Write([]byte{b}); err != nil {
		return fmt.Errorf("i2c write 0x%02x: %w", d.addr, err)
	}
	return nil
}

// WriteReg writes a register followed by its value.
func (d *Device) WriteReg(reg byte, data ...byte) error {
	if _, err := d.file.Write(append([]byte{reg}, data...)); err != nil {
		return fmt.Errorf("i2c write reg 0x%02x@0x%02x: %w", reg, d.addr, err)
	}
	return nil
}

// ReadReg selects a register and reads n bytes back.
func (d *Device) ReadReg(reg byte, n int) ([]byte, error) {
	if _, err := d.file.Write([]byte{reg}); err != nil {
		return nil, fmt.Errorf("i2c select reg 0x%02x@0x%02x: %w", reg, d.addr, err)
	}
	buf := make([]byte, n)
	if _, err := d.file.Read(buf); err != nil {
		return nil, fmt.Errorf("i2c read reg 0x%02x@0x%02x: %w", reg, d.addr, err)
	}
	return buf, nil
}
