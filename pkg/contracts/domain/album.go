// Package domain contains the records exchanged between the HTTP surface and
// the album store.
package domain

// InsertedAlbumTitle is the title written by GET /db/insert.
const InsertedAlbumTitle = "title 123"

// Album is one row of the album table
type Album struct {
	ID    int64  `json:"id" db:"id"`
	Title string `json:"title" db:"title"`
}

// User is the record echoed back by POST /users. Users are not persisted.
type User struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

// StubUserID is the id assigned to every created user.
const StubUserID int64 = 1337
