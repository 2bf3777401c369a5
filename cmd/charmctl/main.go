// charmctl is a line-oriented admin client for a running charmd unit.
// It speaks the TCP JSON control protocol exposed on the unit's admin
// address.
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"
)

// controlRequest is one line-delimited control request payload.
type controlRequest struct {
	Action string            `json:"action"`
	Limit  int               `json:"limit,omitempty"`
	Event  string            `json:"event,omitempty"`
	Params map[string]string `json:"params,omitempty"`
}

// controlResponse is one line-delimited control response payload.
type controlResponse struct {
	OK    bool            `json:"ok"`
	Error string          `json:"error,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

func main() {
	addr := flag.String("addr", "127.0.0.1:9041", "charmd admin control address")
	flag.Usage = usage
	flag.Parse()

	args := flag.Args()
	if len(args) == 0 {
		usage()
		os.Exit(2)
	}

	req, err := buildRequest(args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "charmctl: %v\n", err)
		os.Exit(2)
	}

	resp, err := roundTrip(*addr, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "charmctl: %v\n", err)
		os.Exit(1)
	}
	if !resp.OK {
		fmt.Fprintf(os.Stderr, "charmctl: %s\n", resp.Error)
		os.Exit(1)
	}

	var pretty any
	if err := json.Unmarshal(resp.Data, &pretty); err != nil {
		fmt.Println(string(resp.Data))
		return
	}
	out, err := json.MarshalIndent(pretty, "", "  ")
	if err != nil {
		fmt.Println(string(resp.Data))
		return
	}
	fmt.Println(string(out))
}

func buildRequest(args []string) (controlRequest, error) {
	switch args[0] {
	case "status", "units", "events":
		return controlRequest{Action: args[0]}, nil
	case "deliveries":
		req := controlRequest{Action: "deliveries"}
		if len(args) > 1 {
			limit, err := strconv.Atoi(args[1])
			if err != nil || limit <= 0 {
				return controlRequest{}, fmt.Errorf("deliveries limit must be a positive integer, got %q", args[1])
			}
			req.Limit = limit
		}
		return req, nil
	case "dispatch":
		if len(args) < 2 {
			return controlRequest{}, fmt.Errorf("dispatch requires an event name")
		}
		req := controlRequest{Action: "dispatch", Event: args[1]}
		for _, kv := range args[2:] {
			key, value, ok := strings.Cut(kv, "=")
			if !ok || key == "" {
				return controlRequest{}, fmt.Errorf("dispatch params must be key=value, got %q", kv)
			}
			if req.Params == nil {
				req.Params = make(map[string]string)
			}
			req.Params[key] = value
		}
		return req, nil
	default:
		return controlRequest{}, fmt.Errorf("unknown command: %s", args[0])
	}
}

// roundTrip sends one request line and reads one response line.
func roundTrip(addr string, req controlRequest) (controlResponse, error) {
	conn, err := net.DialTimeout("tcp", addr, 5*time.Second)
	if err != nil {
		return controlResponse{}, err
	}
	defer conn.Close()
	_ = conn.SetDeadline(time.Now().Add(15 * time.Second))

	payload, err := json.Marshal(req)
	if err != nil {
		return controlResponse{}, err
	}
	payload = append(payload, '\n')
	if _, err := conn.Write(payload); err != nil {
		return controlResponse{}, err
	}

	line, err := bufio.NewReader(conn).ReadBytes('\n')
	if err != nil {
		return controlResponse{}, err
	}
	var resp controlResponse
	if err := json.Unmarshal(line, &resp); err != nil {
		return controlResponse{}, err
	}
	return resp, nil
}

func usage() {
	fmt.Fprintf(os.Stderr, `usage: charmctl [-addr host:port] <command>

commands:
  status                          show the unit's projected status
  units                           list hosted unit names
  events                          list registered event names
  deliveries [limit]              show recent event deliveries
  dispatch <event> [k=v ...]      deliver one event with params
`)
	flag.PrintDefaults()
}
