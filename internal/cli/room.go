package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/avorobev/fableroom/internal/gameapi"
	"github.com/avorobev/fableroom/internal/model"
)

func newRoomCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "room",
		Short: "Room management commands",
	}

	cmd.AddCommand(newRoomCreateCmd())
	cmd.AddCommand(newRoomJoinCmd())
	cmd.AddCommand(newRoomInfoCmd())
	cmd.AddCommand(newRoomPauseCmd())
	cmd.AddCommand(newRoomResumeCmd())
	cmd.AddCommand(newRoomStartCmd())
	cmd.AddCommand(newRoomHistoryCmd())
	cmd.AddCommand(newRoomRestoreCmd())
	cmd.AddCommand(newRoomSaveCmd())

	return cmd
}

func newRoomCreateCmd() *cobra.Command {
	var maxPlayers int
	var selection string

	cmd := &cobra.Command{
		Use:   "create",
		Short: "Create a new room with you as master",
		RunE: func(cmd *cobra.Command, args []string) error {
			settings := gameapi.RoomSettings{
				CharacterSelection: model.CharacterSelection(selection),
			}
			if maxPlayers > 0 {
				settings.MaxPlayers = &maxPlayers
			}

			room, err := client.CreateRoom(cmd.Context(), settings)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(room)
			return nil
		},
	}

	cmd.Flags().IntVar(&maxPlayers, "max-players", 0, "Player limit (default: unlimited)")
	cmd.Flags().StringVar(&selection, "characters", "predefined", "Character selection mode: predefined, in-room")

	return cmd
}

func newRoomJoinCmd() *cobra.Command {
	var characterID string

	cmd := &cobra.Command{
		Use:   "join <code>",
		Short: "Join a room by its 6-character code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			resp, err := client.JoinRoom(cmd.Context(), model.RoomCode(args[0]), characterID)
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(&resp.Room)
			return nil
		},
	}

	cmd.Flags().StringVar(&characterID, "character", "", "Character to join with")

	return cmd
}

func newRoomInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info <code>",
		Short: "Show a room's current snapshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			room, err := client.GetRoomInfo(cmd.Context(), model.RoomCode(args[0]))
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(room)
			return nil
		},
	}
}

func newRoomPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <code>",
		Short: "Pause the session (master only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.PauseRoom(cmd.Context(), model.RoomCode(args[0]), true); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Room paused")
			return nil
		},
	}
}

func newRoomResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <code>",
		Short: "Resume a paused session (master only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.PauseRoom(cmd.Context(), model.RoomCode(args[0]), false); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Room resumed")
			return nil
		},
	}
}

func newRoomStartCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "start <code>",
		Short: "Start the room's game (master only)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.StartGame(cmd.Context(), model.RoomCode(args[0])); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Game started")
			return nil
		},
	}
}

func newRoomHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List your saved rooms",
		RunE: func(cmd *cobra.Command, args []string) error {
			saves, err := client.RoomHistory(cmd.Context())
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(saves)
			return nil
		},
	}
}

func newRoomRestoreCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "restore <save-id>",
		Short: "Restore a room from a save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			code, err := client.RestoreRoom(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage(fmt.Sprintf("Restored as room %s", code))
			return nil
		},
	}
}

func newRoomSaveCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "save",
		Short: "Saved-room commands",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "get <save-id>",
		Short: "Show a save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			save, err := client.GetSave(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.Print(save)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "delete <save-id>",
		Short: "Delete a save",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := client.DeleteSave(cmd.Context(), args[0]); err != nil {
				return err
			}

			out := NewOutput(cfg.Output)
			out.PrintMessage("Save deleted")
			return nil
		},
	})

	return cmd
}
