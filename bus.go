package barometer

import (
	"context"
	"fmt"
)

var ErrBusBusy = fmt.Errorf("I2C engine is busy (command not completed)")

type AddressableReader interface {
	ReadFromAddr(ctx context.Context, address byte, buffer []byte) error
}

type AddressableWriter interface {
	WriteToAddr(ctx context.Context, address byte, buffer []byte) error
	Release(ctx context.Context) error
}

// I2CBus is the transport contract drivers are written against. A write
// followed by a read to the same address forms one register transaction;
// implementations do not retry on their own.
type I2CBus interface {
	AddressableReader
	AddressableWriter
}
