package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/avorobev/fableroom/internal/dependencies/clock"
	"github.com/avorobev/fableroom/internal/model"
	"github.com/avorobev/fableroom/internal/services/connection"
	"github.com/avorobev/fableroom/internal/services/notify"
	"github.com/avorobev/fableroom/internal/services/presence"
	"github.com/avorobev/fableroom/internal/services/roomlobby"
)

func newWatchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "watch <code>",
		Short: "Join a room's live session and follow it",
		Long: `Connect to the room over the persistent session socket and keep a live
view of it: lifecycle changes (pause, resume, close, reopen), master
presence, participants, and the game state.

The connection is not retried automatically; if it drops, run watch
again. Press Ctrl+C to leave.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return watchRoom(cmd.Context(), model.RoomCode(args[0]))
		},
	}

	return cmd
}

func watchRoom(parent context.Context, code model.RoomCode) error {
	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	// The master guard needs to know who we are; a failure here just
	// means the pause/start commands stay hidden
	userID := ""
	if me, err := client.Me(ctx); err == nil {
		userID = me.ID
	}

	clk := clock.New()
	bridge := notify.New(clk, logger)
	conn := connection.New(cfg.WSURL, logger)

	ctrl := roomlobby.New(roomlobby.Config{
		Conn:   conn,
		Rooms:  client,
		Notify: bridge,
		Clock:  clk,
		Logger: logger,
		UserID: userID,
	})

	ctrl.Connect(ctx, code, cfg.Token)
	view := ctrl.View()
	if !view.Connected {
		return fmt.Errorf("could not connect to the session server at %s", cfg.WSURL)
	}

	go ctrl.Run(ctx)

	// Handle interrupt
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigCh
		cancel()
	}()

	fmt.Printf("Watching room %s\n", code)

	renderLoop(ctx, ctrl)

	ctrl.Leave()
	fmt.Println("\nLeft room")
	return nil
}

// renderLoop prints view-model changes until the session ends
func renderLoop(ctx context.Context, ctrl *roomlobby.Controller) {
	ticker := time.NewTicker(250 * time.Millisecond)
	defer ticker.Stop()

	printed := map[string]bool{}
	lastState := presence.State("")

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		view := ctrl.View()

		if view.State != lastState {
			fmt.Printf("[%s] state: %s\n", time.Now().Format("15:04:05"), view.State)
			lastState = view.State
		}

		for _, n := range view.Notifications {
			if printed[n.ID] {
				continue
			}
			printed[n.ID] = true
			fmt.Printf("[%s] %s: %s: %s\n",
				n.CreatedAt.Format("15:04:05"), n.Severity, n.Title, n.Message)
		}

		if !view.Connected && view.State == presence.StateNoRoom {
			return
		}
	}
}
