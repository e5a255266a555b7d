// Package main implements an interactive operator shell for a running
// Server, issuing Read/Write/Observe/ListDevices against it from a
// readline prompt.
package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/chzyer/readline"
	"github.com/niki4/lwm2m-server/directory"
	"github.com/niki4/lwm2m-server/server"
)

// Shell runs the interactive command loop against an in-process Server.
type Shell struct {
	srv *server.Server
	rl  *readline.Instance

	observers map[string]int // "device/object/instance/resource" -> handle
}

// NewShell builds a Shell around srv.
func NewShell(srv *server.Server) (*Shell, error) {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "lwm2m> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create readline: %w", err)
	}
	return &Shell{
		srv:       srv,
		rl:        rl,
		observers: make(map[string]int),
	}, nil
}

// Stdout returns a writer coordinated with the readline prompt.
func (s *Shell) Stdout() io.Writer { return s.rl.Stdout() }

// Run drives the command loop until the operator quits or EOF/interrupt.
func (s *Shell) Run() {
	defer s.rl.Close()
	s.printHelp()

	for {
		line, err := s.rl.Readline()
		if err != nil {
			if err == readline.ErrInterrupt {
				continue
			}
			return
		}

		input := strings.TrimSpace(line)
		if input == "" {
			continue
		}
		parts := strings.Fields(input)
		cmd := strings.ToLower(parts[0])
		args := parts[1:]

		switch cmd {
		case "help", "?":
			s.printHelp()
		case "devices", "ls":
			s.cmdDevices()
		case "read", "r":
			s.cmdRead(args)
		case "write", "w":
			s.cmdWrite(args)
		case "observe", "o":
			s.cmdObserve(args)
		case "cancel":
			s.cmdCancel(args)
		case "quit", "exit", "q":
			fmt.Fprintln(s.rl.Stdout(), "Exiting...")
			return
		default:
			fmt.Fprintf(s.rl.Stdout(), "Unknown command: %s (type 'help' for commands)\n", cmd)
		}
	}
}

func (s *Shell) printHelp() {
	fmt.Fprintln(s.rl.Stdout(), `
Commands:
  devices                               - list registered devices
  read <device> <obj>/<inst>/<res>      - read a resource
  write <device> <obj>/<inst>/<res> <v> - write a resource
  observe <device> <obj>/<inst>/<res>   - observe a resource
  cancel <device> <obj>/<inst>/<res>    - cancel an observation
  help                                   - show this help
  quit                                   - exit the shell`)
}

func (s *Shell) cmdDevices() {
	devices := s.srv.Devices()
	if len(devices) == 0 {
		fmt.Fprintln(s.rl.Stdout(), "No registered devices")
		return
	}
	for _, d := range devices {
		fmt.Fprintf(s.rl.Stdout(), "  %-20s lifetime=%s end-of-life=%s objects=%d\n",
			d.Name, d.Lifetime, d.EndOfLife.Format("15:04:05"), len(d.Objects))
	}
}

func (s *Shell) cmdRead(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: read <device> <obj>/<inst>/<res>")
		return
	}
	res, err := s.lookupResource(args[0], args[1])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	data, err := s.srv.Read(res)
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Read failed: %v\n", err)
		return
	}
	fmt.Fprintf(s.rl.Stdout(), "%s = %s\n", args[1], string(data))
}

func (s *Shell) cmdWrite(args []string) {
	if len(args) < 3 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: write <device> <obj>/<inst>/<res> <value>")
		return
	}
	res, err := s.lookupResource(args[0], args[1])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	value := strings.Join(args[2:], " ")
	if err := s.srv.Write(res, []byte(value)); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Write failed: %v\n", err)
		return
	}
	fmt.Fprintln(s.rl.Stdout(), "OK")
}

func (s *Shell) cmdObserve(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: observe <device> <obj>/<inst>/<res>")
		return
	}
	res, err := s.lookupResource(args[0], args[1])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	key := args[0] + "/" + args[1]
	handle := res.RegisterObserver(directory.ResourceObserverFunc(func(data []byte) {
		fmt.Fprintf(s.rl.Stdout(), "\n[notify] %s = %s\n", key, string(data))
		s.rl.Refresh()
	}))
	if err := s.srv.Observe(res); err != nil {
		res.DeregisterObserver(handle)
		fmt.Fprintf(s.rl.Stdout(), "Observe failed: %v\n", err)
		return
	}
	s.observers[key] = handle
	fmt.Fprintln(s.rl.Stdout(), "Observing")
}

func (s *Shell) cmdCancel(args []string) {
	if len(args) < 2 {
		fmt.Fprintln(s.rl.Stdout(), "Usage: cancel <device> <obj>/<inst>/<res>")
		return
	}
	res, err := s.lookupResource(args[0], args[1])
	if err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Error: %v\n", err)
		return
	}
	if err := s.srv.ObserveCancel(res); err != nil {
		fmt.Fprintf(s.rl.Stdout(), "Cancel failed: %v\n", err)
		return
	}
	key := args[0] + "/" + args[1]
	if handle, ok := s.observers[key]; ok {
		res.DeregisterObserver(handle)
		delete(s.observers, key)
	}
	fmt.Fprintln(s.rl.Stdout(), "Cancelled")
}

// lookupResource resolves "device" + "obj/inst/res" into a *directory.Resource.
func (s *Shell) lookupResource(deviceName, path string) (*directory.Resource, error) {
	dev, ok := s.srv.Device(deviceName)
	if !ok {
		return nil, fmt.Errorf("unknown device %q", deviceName)
	}
	objectID, instanceID, resourceID, err := parsePath(path)
	if err != nil {
		return nil, err
	}
	obj, ok := dev.Object(objectID, instanceID)
	if !ok {
		return nil, fmt.Errorf("no object %d/%d on device %q", objectID, instanceID, deviceName)
	}
	res, ok := obj.Resource(resourceID)
	if !ok {
		return nil, fmt.Errorf("no resource %d on object %d/%d", resourceID, objectID, instanceID)
	}
	return res, nil
}

func parsePath(path string) (objectID uint16, instanceID uint8, resourceID uint16, err error) {
	parts := strings.Split(path, "/")
	if len(parts) != 3 {
		return 0, 0, 0, fmt.Errorf("path must be <obj>/<inst>/<res>, got %q", path)
	}
	o, err := strconv.ParseUint(parts[0], 10, 16)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid object id: %v", err)
	}
	i, err := strconv.ParseUint(parts[1], 10, 8)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid instance id: %v", err)
	}
	r, err := strconv.ParseUint(parts[2], 10, 16)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("invalid resource id: %v", err)
	}
	return uint16(o), uint8(i), uint16(r), nil
}
