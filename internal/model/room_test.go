package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCanonicalRoomCode(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want RoomCode
	}{
		{"lowercase", "ab12cd", "AB12CD"},
		{"already canonical", "AB12CD", "AB12CD"},
		{"mixed case", "Ab12Cd", "AB12CD"},
		{"surrounding whitespace", "  ab12cd\n", "AB12CD"},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, CanonicalRoomCode(tt.raw))
		})
	}
}

func TestRoomCodeValid(t *testing.T) {
	assert.True(t, RoomCode("AB12CD").Valid())
	assert.False(t, RoomCode("AB12C").Valid())
	assert.False(t, RoomCode("AB12CDE").Valid())
	assert.False(t, RoomCode("").Valid())
}

func TestRoomIsMaster(t *testing.T) {
	room := &Room{MasterID: "u1"}

	assert.True(t, room.IsMaster("u1"))
	assert.False(t, room.IsMaster("u2"))
	assert.False(t, room.IsMaster(""), "an anonymous viewer is never the master")
	assert.False(t, (&Room{}).IsMaster(""))
}

func TestRoomPlayerLookups(t *testing.T) {
	room := &Room{
		MasterID: "u1",
		Players: []RoomPlayer{
			{UserID: "u1", Username: "alice", Role: RoleMaster},
			{UserID: "u2", Username: "bob", Role: RolePlayer},
		},
	}

	p := room.GetPlayer("u2")
	if assert.NotNil(t, p) {
		assert.Equal(t, "bob", p.Username)
	}
	assert.Nil(t, room.GetPlayer("u3"))

	m := room.Master()
	if assert.NotNil(t, m) {
		assert.Equal(t, "alice", m.Username)
	}
	assert.Nil(t, (&Room{}).Master())
}
