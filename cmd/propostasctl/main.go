// Package main provides propostasctl, the operator CLI for seeding reference
// data, hashing passwords, rendering a stored proposal offline and
// inspecting failed deliveries.
package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"propostas/internal/config"
	"propostas/internal/infra"
	"propostas/internal/model"
	"propostas/internal/repository"
	"propostas/internal/router"
	"propostas/internal/seed"
	"propostas/internal/service"
	"propostas/internal/worker"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

const (
	Version = "0.1.0"
	appName = "propostasctl"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	var envFile string

	cmd := &cobra.Command{
		Use:   appName,
		Short: "Operator tooling for the proposals service",
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Missing env file is fine: variables may come from the environment.
			if envFile != "" {
				_ = godotenv.Load(envFile)
			}
			log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
			return nil
		},
		SilenceUsage: true,
	}
	cmd.PersistentFlags().StringVar(&envFile, "env-file", ".env.local", "dotenv file loaded before reading config")

	cmd.AddCommand(seedCmd(), genhashCmd(), renderCmd(), dlqCmd())
	cmd.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "%s version %s\n", appName, Version)
		},
	})
	return cmd
}

func seedCmd() *cobra.Command {
	var (
		senha   string
		arquivo string
	)
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Load catalogs, branches and initial users",
		RunE: func(cmd *cobra.Command, args []string) error {
			dados, err := carregarDados(arquivo)
			if err != nil {
				return err
			}
			hash, err := service.HashSenha(senha)
			if err != nil {
				return err
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := infra.NewDatabase(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("conectar postgres: %w", err)
			}

			rel, err := seed.Executar(cmd.Context(), seed.Repos{
				Catalogo: repository.NewCatalogoRepository(db),
				Unidades: repository.NewUnidadeRepository(db),
				Usuarios: repository.NewUsuarioRepository(db),
			}, dados, hash)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "catálogo: %d  unidades: %d  usuários: %d\n", rel.Catalogo, rel.Unidades, rel.Usuarios)
			return nil
		},
	}
	cmd.Flags().StringVar(&senha, "senha", "senha123", "password set for every seeded user")
	cmd.Flags().StringVarP(&arquivo, "arquivo", "f", "", "YAML seed file (defaults to the embedded dataset)")
	return cmd
}

func carregarDados(arquivo string) (*seed.Dados, error) {
	if arquivo == "" {
		return seed.Padrao()
	}
	b, err := os.ReadFile(arquivo)
	if err != nil {
		return nil, err
	}
	return seed.Carregar(b)
}

func genhashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "genhash <senha>",
		Short: "Print the bcrypt hash for a password",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			hash, err := service.HashSenha(args[0])
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

func renderCmd() *cobra.Command {
	var (
		id  int64
		out string
	)
	cmd := &cobra.Command{
		Use:   "render",
		Short: "Render a stored proposal to a PDF file",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := infra.NewDatabase(cfg.DatabaseURL)
			if err != nil {
				return fmt.Errorf("conectar postgres: %w", err)
			}
			svc, err := router.NovosServicos(cfg, db, nil)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
			defer cancel()
			doc, err := svc.Documentos.GerarPDF(ctx, model.PrincipalSistema(), id)
			if err != nil {
				return err
			}
			if out == "" {
				out = doc.NomeArquivo
			}
			if err := os.WriteFile(filepath.Clean(out), doc.Conteudo, 0o644); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s → %s (%d bytes)\n", doc.Numero, out, len(doc.Conteudo))
			return nil
		},
	}
	cmd.Flags().Int64Var(&id, "id", 0, "proposal id")
	cmd.Flags().StringVarP(&out, "out", "o", "", "output file (defaults to the proposal file name)")
	_ = cmd.MarkFlagRequired("id")
	return cmd
}

func dlqCmd() *cobra.Command {
	var n int64
	cmd := &cobra.Command{
		Use:   "dlq",
		Short: "List proposal deliveries parked in the dead letter queue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			rdb, err := infra.NewRedis(cfg.RedisURL)
			if err != nil {
				return fmt.Errorf("conectar redis: %w", err)
			}
			defer rdb.Close()

			total, err := worker.DLQLength(cmd.Context(), rdb, worker.QueueEnvio)
			if err != nil {
				return err
			}
			entries, err := worker.ListarDLQ(cmd.Context(), rdb, worker.QueueEnvio, n)
			if err != nil {
				return err
			}
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "%d job(s) em %s%s\n", total, worker.DLQPrefix, worker.QueueEnvio)
			for _, e := range entries {
				fmt.Fprintf(w, "%s  %s  tentativas=%d  %s\n  payload: %s\n",
					e.FailedAt.Format(time.RFC3339), e.JobID, e.Attempts, e.Reason, e.Payload)
			}
			return nil
		},
	}
	cmd.Flags().Int64VarP(&n, "limite", "n", 20, "number of entries to show")
	return cmd
}
