package history

import "errors"

// Общие ошибки архива.
var (
	// ErrNotFound — запись не найдена в БД.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists — запуск с таким ID уже в архиве.
	ErrAlreadyExists = errors.New("already exists")
)
