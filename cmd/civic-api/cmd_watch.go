package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os/signal"
	"syscall"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/spf13/cobra"

	"github.com/noah-isme/civic-report-api/internal/models"
	"github.com/noah-isme/civic-report-api/internal/realtime"
	"github.com/noah-isme/civic-report-api/pkg/feed"
)

var (
	watchURL   string
	watchToken string
	watchJoin  int64
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Connect to /socket and print events as they arrive",
	Long: `Opens an authenticated socket the way the dashboards do and prints every event. Staff
notifications are folded into a local feed so the printed unread count matches what a
dashboard would show. Pass --join with your own user id to receive per-user events.`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().StringVar(&watchURL, "url", "ws://localhost:5000/socket", "socket endpoint")
	watchCmd.Flags().StringVar(&watchToken, "token", "", "bearer token")
	watchCmd.Flags().Int64Var(&watchJoin, "join", 0, "user id to join (must match the token)")
	_ = watchCmd.MarkFlagRequired("token")
}

type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

func runWatch(cmd *cobra.Command, _ []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	endpoint, err := url.Parse(watchURL)
	if err != nil {
		return fmt.Errorf("parse url: %w", err)
	}
	q := endpoint.Query()
	q.Set("token", watchToken)
	endpoint.RawQuery = q.Encode()

	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	conn, resp, err := websocket.Dial(dialCtx, endpoint.String(), nil)
	cancel()
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return errors.New("socket rejected the token")
		}
		return fmt.Errorf("dial %s: %w", watchURL, err)
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	if watchJoin > 0 {
		join := realtime.Message{Event: realtime.EventJoinRoom, Data: map[string]int64{"userId": watchJoin}}
		if err := wsjson.Write(ctx, conn, join); err != nil {
			return fmt.Errorf("join room: %w", err)
		}
	}

	return watchLoop(ctx, conn, cmd.OutOrStdout())
}

func watchLoop(ctx context.Context, conn *websocket.Conn, out io.Writer) error {
	var notifications []models.Notification
	for {
		var frame inboundFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if errors.Is(err, context.Canceled) || websocket.CloseStatus(err) != -1 {
				return nil
			}
			return fmt.Errorf("read: %w", err)
		}
		fmt.Fprintf(out, "%s %s %s\n", time.Now().Format(time.RFC3339), frame.Event, string(frame.Data))

		if !isNotificationEvent(frame.Event) {
			continue
		}
		var n models.Notification
		if err := json.Unmarshal(frame.Data, &n); err != nil || n.ID == 0 {
			continue
		}
		notifications = feed.Visible(feed.Merge(notifications, n), time.Now(), feed.DefaultRetention)
		fmt.Fprintf(out, "  feed: %d notifications, %d unread\n", len(notifications), unread(notifications))
	}
}

func isNotificationEvent(event string) bool {
	switch event {
	case realtime.EventNewBarangayReport, realtime.EventNewDocumentRequest,
		realtime.EventMobileUserRegistered, realtime.EventNewVerificationRequest:
		return true
	}
	return false
}

func unread(list []models.Notification) int {
	n := 0
	for _, item := range list {
		if !item.IsRead {
			n++
		}
	}
	return n
}
