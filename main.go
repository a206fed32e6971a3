// process entry: flags, signals, logger, then the run loop
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"

	"golang.org/x/sys/unix"

	"github.com/kfcemployee/staticd/server"
	"github.com/kfcemployee/staticd/server/logx"
)

func main() {
	ip := flag.String("h", "127.0.0.1", "bind address")
	port := flag.Int("p", 8080, "port")
	dir := flag.String("d", ".", "document root")
	logPath := flag.String("l", "", "log path, empty logs to stderr")
	flag.Parse()

	signal.Ignore(unix.SIGHUP)

	log, err := logx.New(*logPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	srv, err := server.New(server.Config{IP: *ip, Port: *port, Dir: *dir}, log)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	// Run returns only on a fatal poller failure
	srv.Run()
	os.Exit(1)
}
