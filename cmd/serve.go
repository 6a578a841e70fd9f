package cmd

import (
	"net/http"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/cloudsim-rl/cloudsim-core/bridge"
)

var serveAddr string

// serveCmd starts the JSON/HTTP agent bridge using the same gorilla/mux
// server-startup pattern as the rest of the CLI.
var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the JSON/HTTP agent bridge",
	Run: func(cmd *cobra.Command, args []string) {
		srv := bridge.NewServer()
		logrus.Infof("starting agent bridge on %s", serveAddr)
		if err := http.ListenAndServe(serveAddr, srv.Router()); err != nil {
			logrus.Fatalf("bridge server stopped: %v", err)
		}
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8090", "Address for the agent bridge to listen on")
}
