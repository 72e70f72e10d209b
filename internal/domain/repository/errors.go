package repository

import "errors"

var (
	// ErrNotFound indica que el documento no existe (Update sobre uid inexistente).
	ErrNotFound = errors.New("not found")

	// ErrInvalidRecord indica que el documento guardado no se puede traducir a UserRecord.
	ErrInvalidRecord = errors.New("invalid record")

	// ErrInvalidInput indica que la key o los campos fueron rechazados por el store.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNotLeader indica que la escritura requiere ser líder del cluster.
	ErrNotLeader = errors.New("not cluster leader")
)

// IsNotFound verifica si el error es ErrNotFound.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsInvalidRecord verifica si el error es ErrInvalidRecord.
func IsInvalidRecord(err error) bool {
	return errors.Is(err, ErrInvalidRecord)
}

// IsInvalidInput verifica si el error es ErrInvalidInput.
func IsInvalidInput(err error) bool {
	return errors.Is(err, ErrInvalidInput)
}
