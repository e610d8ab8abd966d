package store

import "fmt"

var redisKeys = struct {
	ROOM_IDS    string
	ROOM        func(string) string
	ROOM_SHAPES func(string) string
}{
	"room_ids",
	func(id string) string {
		return fmt.Sprint("room_", id)
	},
	func(id string) string {
		return fmt.Sprint("room_shapes_", id)
	},
}
