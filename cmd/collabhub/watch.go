package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/ZIXNRIXZ/Collabhub/internal/client/realtime"
	"github.com/ZIXNRIXZ/Collabhub/internal/client/rpc"
	"github.com/ZIXNRIXZ/Collabhub/internal/client/state"
	"github.com/ZIXNRIXZ/Collabhub/internal/infra/logger"
	"github.com/ZIXNRIXZ/Collabhub/internal/relay"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Follow a session room and mirror its code into local state",
	Long: `Joins a relay room and writes every code update it receives into the
local client state, the same way an editor tab would.

Endpoints come from --api-url/--socket-url or COLLABHUB_API_URL and
COLLABHUB_SOCKET_URL.`,
	RunE: runWatch,
}

func init() {
	f := watchCmd.Flags()
	f.String("session", "", "session id to join")
	f.String("state-dir", defaultStateDir(), "directory holding persisted client state")
	f.String("state-redis", "", "redis address to keep client state in instead of state-dir")
	f.String("api-url", "http://localhost:4000/api/v1", "API base URL")
	f.String("socket-url", "ws://localhost:4000/ws", "relay URL")
	f.String("log-level", "info", "log level")
	_ = watchCmd.MarkFlagRequired("session")
}

func defaultStateDir() string {
	if dir, err := os.UserConfigDir(); err == nil {
		return filepath.Join(dir, "collabhub")
	}
	return ".collabhub"
}

func watchConfig(cmd *cobra.Command) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("COLLABHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()
	if err := v.BindPFlags(cmd.Flags()); err != nil {
		return nil, err
	}
	return v, nil
}

func openStorage(v *viper.Viper) (state.Storage, func(), error) {
	if addr := v.GetString("state-redis"); addr != "" {
		rdb := redis.NewClient(&redis.Options{Addr: addr})
		return state.NewRedisStorage(rdb, ""), func() { _ = rdb.Close() }, nil
	}
	fs, err := state.NewFileStorage(v.GetString("state-dir"))
	if err != nil {
		return nil, nil, err
	}
	return fs, func() {}, nil
}

func runWatch(cmd *cobra.Command, args []string) error {
	v, err := watchConfig(cmd)
	if err != nil {
		return err
	}
	log, err := logger.New(v.GetString("log-level"))
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStorage(v)
	if err != nil {
		return fmt.Errorf("open state: %w", err)
	}
	defer closeStore()

	st := state.New(store, state.WithLogger(log))
	if err := st.Hydrate(ctx); err != nil {
		return err
	}
	defer func() {
		if err := st.Close(context.Background()); err != nil {
			log.Warn("persist state", zap.Error(err))
		}
	}()

	sessionID := v.GetString("session")
	token, profile, signedIn, err := st.LoadSession(ctx)
	if err != nil {
		return err
	}
	if signedIn {
		log.Info("using saved session", zap.String("email", profile.Email))
		seedFromAPI(ctx, log, rpc.New(v.GetString("api-url"), rpc.WithToken(token)), st, sessionID)
	}

	rt := realtime.New(realtime.Options{URL: v.GetString("socket-url"), Token: token, Log: log})
	rt.OnCodeUpdate(func(id, code string) {
		if id != sessionID {
			return
		}
		st.SetMainCode(code)
		if err := st.Persist(ctx); err != nil {
			log.Warn("persist state", zap.Error(err))
		}
		log.Info("code updated", zap.String("session_id", id), zap.Int("bytes", len(code)))
	})
	rt.OnUserJoined(func(p relay.Presence) {
		log.Info("user joined", zap.String("session_id", p.SessionID), zap.String("connection_id", p.User.ConnectionID), zap.String("name", p.User.Name))
	})
	rt.OnUserLeft(func(p relay.Presence) {
		log.Info("user left", zap.String("session_id", p.SessionID), zap.String("connection_id", p.User.ConnectionID))
	})

	if err := rt.Connect(ctx); err != nil {
		return fmt.Errorf("connect relay: %w", err)
	}
	defer rt.Close()
	if err := rt.JoinSession(sessionID); err != nil {
		return err
	}
	log.Info("watching", zap.String("session_id", sessionID))

	select {
	case <-ctx.Done():
		return nil
	case <-rt.Done():
		return errors.New("relay connection lost")
	}
}

// seedFromAPI loads the saved buffer so the local copy starts from the last
// save rather than from nothing. Failures only cost the seed.
func seedFromAPI(ctx context.Context, log *zap.Logger, api *rpc.Client, st *state.Container, sessionID string) {
	id, err := uuid.Parse(sessionID)
	if err != nil {
		return
	}
	sess, err := api.JoinSession(ctx, id)
	if err != nil {
		log.Warn("could not load saved session code", zap.Error(err))
		return
	}
	st.SetMainCode(sess.Code)
}
