package cli

import (
	"log"

	"github.com/spf13/cobra"

	"cartridge-engine/internal/web"
)

func newServeCommand(opts *rootOptions) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP transformation service",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap(opts, true)
			if err != nil {
				return err
			}
			defer rt.Close()

			if rt.cfg.Cache.WarmOnStartup {
				rt.svc.Warm()
			} else {
				log.Printf("cache warming disabled")
			}

			if addr == "" {
				addr = rt.cfg.HTTP.Addr
			}

			log.Printf("listening on %s (bulk parallelism %d)", addr, rt.cfg.Bulk.Parallelism)

			return web.NewServer(rt.svc).Run(addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides http.addr)")

	return cmd
}
