package unitd

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/danmuck/charmctl/internal/dispatch"
)

// controlRequest is one admin action envelope consumed by charmctl.
type controlRequest struct {
	Action string            `json:"action"`
	Limit  int               `json:"limit,omitempty"`
	Event  string            `json:"event,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// controlResponse is one admin action result envelope emitted by charmctl.
type controlResponse struct {
	OK    bool   `json:"ok"`
	Error string `json:"error,omitempty"`
	Data  any    `json:"data,omitempty"`
}

// serveAdminControl exposes a TCP JSON request/response endpoint for charmctl.
func (s *Service) serveAdminControl(ctx context.Context, addr string) error {
	ln, err := net.Listen("tcp", strings.TrimSpace(addr))
	if err != nil {
		return err
	}
	defer ln.Close()
	log.Info().Str("addr", ln.Addr().String()).Msg("unitd.admin listening")

	go func() {
		<-ctx.Done()
		_ = ln.Close()
	}()

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			return err
		}
		go s.handleAdminConn(conn)
	}
}

// handleAdminConn decodes one request per line and writes one response per line.
func (s *Service) handleAdminConn(conn net.Conn) {
	defer conn.Close()
	remote := conn.RemoteAddr().String()
	active := s.adminClientCount.Add(1)
	log.Info().Str("remote", remote).Int64("active_clients", active).Msg("unitd.admin client connected")
	defer func() {
		remaining := s.adminClientCount.Add(-1)
		log.Info().Str("remote", remote).Int64("active_clients", remaining).Msg("unitd.admin client disconnected")
	}()

	reader := bufio.NewReader(conn)
	for {
		_ = conn.SetReadDeadline(time.Now().Add(30 * time.Second))
		line, err := reader.ReadBytes('\n')
		if err != nil {
			if err != io.EOF {
				log.Warn().Err(err).Msg("unitd.admin read failed")
			}
			return
		}
		var req controlRequest
		if err := json.Unmarshal(line, &req); err != nil {
			_ = writeControlResponse(conn, controlResponse{OK: false, Error: err.Error()})
			continue
		}
		resp := s.handleControlRequest(req)
		if err := writeControlResponse(conn, resp); err != nil {
			log.Warn().Err(err).Msg("unitd.admin write failed")
			return
		}
	}
}

// handleControlRequest dispatches RPC-like admin actions to service methods.
func (s *Service) handleControlRequest(req controlRequest) controlResponse {
	switch req.Action {
	case "status":
		if s.charm == nil {
			return controlResponse{OK: false, Error: ErrNotBootstrapped.Error()}
		}
		return controlResponse{OK: true, Data: s.statusView()}
	case "units":
		return controlResponse{OK: true, Data: s.Units()}
	case "events":
		return controlResponse{OK: true, Data: s.EventNames()}
	case "deliveries":
		return controlResponse{OK: true, Data: s.RecentDeliveries(req.Limit)}
	case "dispatch":
		outcome, err := s.Dispatch(dispatch.Event{Name: req.Event, Params: req.Params})
		if err != nil {
			return controlResponse{OK: false, Error: err.Error()}
		}
		return controlResponse{
			OK: true,
			Data: map[string]any{
				"outcome": outcome,
				"status":  s.statusView(),
			},
		}
	default:
		return controlResponse{OK: false, Error: fmt.Sprintf("unknown action: %s", req.Action)}
	}
}

func writeControlResponse(w io.Writer, resp controlResponse) error {
	payload, err := json.Marshal(resp)
	if err != nil {
		return err
	}
	payload = append(payload, '\n')
	_, err = w.Write(payload)
	return err
}
