package input

import (
	"fmt"
	"io"
	"strconv"
	"sync"
	"time"

	"github.com/go-vgo/robotgo"
	"github.com/rs/zerolog/log"
	"go.bug.st/serial"
)

// Key codes understood by the HID firmware (Arduino Keyboard library
// usages for the keys this tool presses).
var serialKeyCodes = map[string]int{
	"enter": 0xB0,
	"esc":   0xB1,
}

const serialMouseLeft = 1

// SerialActuator is the alternate Actuator backend: instead of synthesizing
// OS events it drives an external HID device (an Arduino flashed with a
// keyboard/mouse firmware) over a serial line. The firmware acknowledges
// every command with "ready"; commands are serialized under a lock.
//
// Move commands are relative, so the current cursor position is read
// locally before computing the delta.
type SerialActuator struct {
	mu   sync.Mutex
	port serial.Port
}

// OpenSerialActuator opens the named port at 115200 baud and waits out the
// device's reset window.
func OpenSerialActuator(portName string) (*SerialActuator, error) {
	port, err := serial.Open(portName, &serial.Mode{BaudRate: 115200})
	if err != nil {
		return nil, fmt.Errorf("open serial port %s: %w", portName, err)
	}
	if err := port.SetReadTimeout(2 * time.Second); err != nil {
		port.Close()
		return nil, fmt.Errorf("set serial read timeout: %w", err)
	}
	// The device reboots when the port opens; give the firmware time to
	// come back before the first command.
	time.Sleep(2 * time.Second)
	log.Info().Str("port", portName).Msg("serial actuator connected")
	return &SerialActuator{port: port}, nil
}

// Close releases the serial port.
func (a *SerialActuator) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.port != nil {
		a.port.Close()
		a.port = nil
	}
}

func (a *SerialActuator) send(cmd string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.port == nil {
		return fmt.Errorf("serial actuator closed")
	}
	if err := a.port.ResetInputBuffer(); err != nil {
		return fmt.Errorf("reset input buffer: %w", err)
	}
	if _, err := a.port.Write([]byte(cmd)); err != nil {
		return fmt.Errorf("send %q: %w", cmd, err)
	}
	reply := make([]byte, len("ready"))
	if _, err := io.ReadFull(a.port, reply); err != nil {
		return fmt.Errorf("read ack for %q: %w", cmd, err)
	}
	if string(reply) != "ready" {
		return fmt.Errorf("unexpected ack %q for %q", reply, cmd)
	}
	return nil
}

func (a *SerialActuator) Click(x, y int) {
	if err := a.moveTo(x, y); err != nil {
		log.Error().Err(err).Int("x", x).Int("y", y).Msg("serial mouse move failed")
		return
	}
	if err := a.send("6" + strconv.Itoa(serialMouseLeft)); err != nil {
		log.Error().Err(err).Msg("serial click failed")
	}
}

func (a *SerialActuator) PressKey(name string) {
	code, ok := serialKeyCodes[name]
	if !ok {
		log.Error().Str("key", name).Msg("no serial key code for key")
		return
	}
	if err := a.send("1" + strconv.Itoa(code)); err != nil {
		log.Error().Err(err).Str("key", name).Msg("serial key press failed")
	}
}

func (a *SerialActuator) moveTo(x, y int) error {
	curX, curY := robotgo.Location()
	dx, dy := x-curX, y-curY
	signX, signY := "+", "+"
	if dx < 0 {
		signX, dx = "-", -dx
	}
	if dy < 0 {
		signY, dy = "-", -dy
	}
	return a.send(fmt.Sprintf("5%s%s%d", signX, signY, dx*65535+dy))
}
