// Command shortenctl отправляет URL или файл в сервис сокращения ссылок
// из терминала и печатает результат так же, как его показывает страница.
package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Totarae/URLShortenerFront/internal/model"
	"github.com/Totarae/URLShortenerFront/internal/service"
	"github.com/Totarae/URLShortenerFront/internal/view"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
)

func main() {
	cobra.CheckErr(newRootCmd().Execute())
}

func newRootCmd() *cobra.Command {
	v := viper.New()
	v.AutomaticEnv()

	root := &cobra.Command{
		Use:           "shortenctl",
		Short:         "Shorten a URL or a file through the shortening service",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("server", "", "shortening service base URL (env SERVER_URL)")
	root.PersistentFlags().Duration("timeout", 0, "request timeout")
	root.PersistentFlags().Bool("verbose", false, "log backend calls")
	root.PersistentFlags().String("short", "", "desired short name")
	_ = v.BindPFlag("SERVER_URL", root.PersistentFlags().Lookup("server"))
	_ = v.BindPFlag("REQUEST_TIMEOUT", root.PersistentFlags().Lookup("timeout"))

	gateway := func(cmd *cobra.Command) *service.Gateway {
		logger := zap.NewNop()
		if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
			logger, _ = zap.NewDevelopment()
		}
		return service.NewGateway(viperBackend{v}, v.GetDuration("REQUEST_TIMEOUT"), logger)
	}

	root.AddCommand(&cobra.Command{
		Use:   "url <url>",
		Short: "Shorten a URL",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			short, _ := cmd.Flags().GetString("short")
			res, err := gateway(cmd).CreateURL(cmd.Context(), model.URLRequest{URL: args[0], Short: short})
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	})

	root.AddCommand(&cobra.Command{
		Use:   "file <path>",
		Short: "Upload a file and get a short link to it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			short, _ := cmd.Flags().GetString("short")
			res, err := uploadFile(cmd.Context(), gateway(cmd), args[0], short)
			if err != nil {
				return err
			}
			return printResult(cmd.OutOrStdout(), res)
		},
	})

	return root
}

type viperBackend struct {
	v *viper.Viper
}

func (b viperBackend) BackendURL() string {
	return b.v.GetString("SERVER_URL")
}

func uploadFile(ctx context.Context, gw *service.Gateway, path, short string) (*model.ShortenResult, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat file: %w", err)
	}

	return gw.UploadFile(ctx, model.FileRequest{
		Name:    info.Name(),
		Size:    info.Size(),
		Content: f,
		Short:   short,
	})
}

// printResult печатает сообщение по тем же правилам, что и страница.
func printResult(w io.Writer, res *model.ShortenResult) error {
	msg := view.Project(res)
	var err error
	switch view.Classify(msg) {
	case view.KindLink:
		_, err = fmt.Fprintf(w, "✅ Your short URL is: %s\n", msg)
	case view.KindFailure:
		_, err = fmt.Fprintf(w, "❌ %s\n", msg)
	default:
		_, err = fmt.Fprintln(w, view.PromptText)
	}
	return err
}
