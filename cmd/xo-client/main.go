// Command xo-client connects to a game server and plays from the terminal.
// Server lines are printed to stdout; every line typed on stdin is sent to
// the server as-is.
package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/cyberinferno/xo-server/client"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:5000", "server address to connect to")
	flag.Parse()

	if err := run(*addr); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(addr string) error {
	c := client.New(client.DefaultConfig(addr))
	defer func() { _ = c.Close() }()

	done := make(chan struct{})

	c.OnLine(func(line string) {
		fmt.Println(line)
	})
	c.OnDisconnect(func(err error) {
		if err != nil {
			fmt.Fprintln(os.Stderr, "connection lost:", err)
		} else {
			fmt.Println("Connection closed by server.")
		}
		close(done)
	})

	if err := c.Connect(); err != nil {
		return err
	}

	input := make(chan string)
	go func() {
		scanner := bufio.NewScanner(os.Stdin)
		for scanner.Scan() {
			input <- scanner.Text()
		}
		close(input)
	}()

	for {
		select {
		case <-done:
			return nil
		case line, ok := <-input:
			if !ok {
				// Stdin ended; leave the game rather than sit silent
				// until the server's move timeout. A player still in
				// the matchmaking queue is never read, hence the cap.
				_ = c.SendLine("QUIT")
				select {
				case <-done:
				case <-time.After(2 * time.Second):
				}
				return nil
			}
			if err := c.SendLine(line); err != nil {
				return nil
			}
		}
	}
}
