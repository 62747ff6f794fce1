package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/frontdesk-ai/frontdesk/internal/appointment"
	"github.com/frontdesk-ai/frontdesk/internal/llm"
	"github.com/frontdesk-ai/frontdesk/internal/persona"
	"github.com/frontdesk-ai/frontdesk/internal/server"
	"github.com/frontdesk-ai/frontdesk/internal/telnyx"
	"github.com/frontdesk-ai/frontdesk/internal/tool"
	_ "github.com/frontdesk-ai/frontdesk/internal/tool/builtin"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the Frontdesk gateway",
	Long:  `Starts the HTTP gateway: telephony webhook receivers plus the OpenAI-compatible chat-completion proxy with persona injection and appointment tools.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg == nil {
			return fmt.Errorf("config not loaded")
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		router, err := llm.NewRouter(cfg.Models)
		if err != nil {
			return fmt.Errorf("failed to initialize model router: %w", err)
		}

		personas := persona.NewManager(cfg.Persona)
		if len(personas.List()) == 0 {
			slog.Warn("No persona documents found, assistant will run without persona text", "dir", cfg.Persona.Dir)
		}

		registry := tool.NewRegistry()
		builtins, err := tool.InstantiateBuiltins(tool.BuiltinOptions{
			Book: appointment.NewBook(),
		})
		if err != nil {
			return fmt.Errorf("failed to build appointment tools: %w", err)
		}
		for _, t := range builtins {
			registry.Register(t)
		}

		calls, err := telnyx.NewClient(cfg.Telnyx)
		if err != nil {
			return fmt.Errorf("failed to create telnyx client: %w", err)
		}

		srv, err := server.New(cfg, router, personas, registry, calls)
		if err != nil {
			return fmt.Errorf("failed to create server: %w", err)
		}

		slog.Info("Frontdesk starting up...",
			"port", cfg.Server.Port,
			"persona", cfg.Persona.Name,
			"business", cfg.Business.Name,
			"model", cfg.Models.Default)

		handler := NewSignalHandler(cmd.Context())
		handler.Start()
		defer handler.Stop()

		srv.Start()
		<-handler.Context().Done()

		return srv.Stop(context.Background())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}
