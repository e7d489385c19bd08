package calypso

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/gregLibert/calypso-sv/pkg/iso7816"
)

// Command is a Calypso card or SAM command ready to be sent.
type Command interface {
	// Name identifies the command in logs and errors.
	Name() string
	// APDU returns the command to send, nil while it still needs data from
	// another exchange.
	APDU() *iso7816.CommandAPDU
	// Interpret resolves the final status word of the command.
	Interpret(sw iso7816.StatusWord) Outcome
}

// ResponseParser is implemented by commands that decode their response data.
type ResponseParser interface {
	ParseResponse(data []byte) error
}

// command holds what every Command shares.
type command struct {
	name   string
	apdu   *iso7816.CommandAPDU
	status StatusTable
}

func (c *command) Name() string {
	return c.name
}

func (c *command) APDU() *iso7816.CommandAPDU {
	return c.apdu
}

func (c *command) Interpret(sw iso7816.StatusWord) Outcome {
	return c.status.Interpret(sw)
}

// Bytes returns the encoded command; each call allocates a new slice.
func (c *command) Bytes() ([]byte, error) {
	if c.apdu == nil {
		return nil, fmt.Errorf("%s: %w", c.name, ErrNotFinalized)
	}
	return c.apdu.Bytes()
}

// Execute sends cmd through client, interprets the final status word and,
// on success, hands the response data to cmd when it is a ResponseParser.
// A failure status is returned as a *StatusError along with the trace.
func Execute(client *iso7816.Client, cmd Command) (iso7816.Trace, error) {
	apdu := cmd.APDU()
	if apdu == nil {
		return nil, fmt.Errorf("%s: %w", cmd.Name(), ErrNotFinalized)
	}

	trace, err := client.Send(apdu)
	if err != nil {
		return trace, fmt.Errorf("%s: %w", cmd.Name(), err)
	}

	outcome := cmd.Interpret(trace.Status())
	log := clientLogger(client).WithFields(logrus.Fields{
		"command":  cmd.Name(),
		"sw":       fmt.Sprintf("%04X", uint16(outcome.Status)),
		"category": outcome.Category.String(),
	})
	if !outcome.IsSuccess() {
		log.Warn(outcome.Description)
		return trace, outcome.Err(cmd.Name())
	}
	log.Debug(outcome.Description)

	if p, ok := cmd.(ResponseParser); ok {
		if err := p.ParseResponse(trace.Data()); err != nil {
			return trace, fmt.Errorf("%s: %w", cmd.Name(), err)
		}
	}
	return trace, nil
}

func clientLogger(c *iso7816.Client) logrus.FieldLogger {
	if c.Log != nil {
		return c.Log
	}
	return logrus.StandardLogger()
}
