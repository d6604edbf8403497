package repository

import "github.com/google/uuid"

// newID выдаёт UUIDv7: в пределах процесса строки растут монотонно,
// поэтому сортировка по id DESC при равном created_at сохраняет порядок вставки.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}
