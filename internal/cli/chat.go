package cli

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/smartshopper/agent/internal/agent"
)

func newChatCmd() *cobra.Command {
	var (
		rag    bool
		oneOff string
	)

	cmd := &cobra.Command{
		Use:   "chat [question]",
		Short: "Talk to the shopping assistant",
		Long:  "Answers a single question, or starts an interactive prompt when none is given. With --rag, answers are grounded in the retrieval index instead of live tool calls alone.",
		Args:  cobra.ArbitraryArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := newLLMClient(cfg)
			if err != nil {
				return err
			}

			cat := newCatalogClient(cfg)
			loop := newLoop(cfg, client, newTools(cat))

			var ask func(query string) (*agent.Result, error)
			if rag {
				store, err := openStore(cfg)
				if err != nil {
					return err
				}
				defer store.Close()

				ret := newRetriever(cfg, newEmbedder(cfg), store)
				ask = func(query string) (*agent.Result, error) {
					results, err := ret.Retrieve(cmd.Context(), query)
					if err != nil {
						return nil, err
					}
					docs := make([]agent.Document, 0, len(results))
					for _, r := range results {
						docs = append(docs, agent.Document{ID: r.Meta.ProductID, Text: r.Text})
					}
					prompt := agent.BuildRAGPrompt(query, docs, loop.ToolNames())
					return loop.RunPrompt(cmd.Context(), prompt)
				}
			} else {
				ask = func(query string) (*agent.Result, error) {
					return loop.Run(cmd.Context(), query)
				}
			}

			query := oneOff
			if query == "" && len(args) > 0 {
				query = strings.Join(args, " ")
			}
			if query != "" {
				return answer(ask, query)
			}

			fmt.Println("shopagent interactive chat. Empty line or Ctrl-D exits.")
			scanner := bufio.NewScanner(os.Stdin)
			for {
				fmt.Print("> ")
				if !scanner.Scan() {
					return scanner.Err()
				}
				query := strings.TrimSpace(scanner.Text())
				if query == "" {
					return nil
				}
				if err := answer(ask, query); err != nil {
					log.Error().Err(err).Msg("query failed")
				}
			}
		},
	}

	cmd.Flags().BoolVar(&rag, "rag", false, "ground answers in the retrieval index")
	cmd.Flags().StringVarP(&oneOff, "query", "q", "", "answer a single query and exit")

	return cmd
}

func answer(ask func(string) (*agent.Result, error), query string) error {
	result, err := ask(query)
	if err != nil {
		return err
	}
	fmt.Println(result.Answer)
	if result.Incomplete {
		fmt.Fprintln(os.Stderr, "(conversation hit the round limit before a final answer)")
	}
	return nil
}
