package cmd

import (
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/sirosfoundation/go-netvisor/pkg/netvisor"
)

var getCmd = &cobra.Command{
	Use:   "get <resource> [key=value...]",
	Short: "Send a GET request",
	Long: `Send a signed GET request to a resource. Parameters are sent in the
order given.

Examples:
  netvisor get customerlist.nv keyword=acme
  netvisor get getcustomer id=165 --raw`,
	Args: cobra.MinimumNArgs(1),
	RunE: runGet,
}

var bodyFile string

var postCmd = &cobra.Command{
	Use:   "post <resource> [key=value...] --file body.xml",
	Short: "Send a POST request",
	Long: `Send a signed POST request with an XML body read from a file. The file
is sent as-is.

Examples:
  netvisor post customer.nv method=add --file customer.xml`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPost,
}

func init() {
	postCmd.Flags().StringVarP(&bodyFile, "file", "f", "", "XML request body (required)")
	_ = postCmd.MarkFlagRequired("file")

	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(postCmd)
}

func runGet(cmd *cobra.Command, args []string) error {
	params, err := parseParams(args[1:])
	if err != nil {
		return err
	}
	return call(cmd, http.MethodGet, args[0], params, nil)
}

func runPost(cmd *cobra.Command, args []string) error {
	params, err := parseParams(args[1:])
	if err != nil {
		return err
	}
	body, err := os.ReadFile(bodyFile)
	if err != nil {
		return fmt.Errorf("reading request body: %w", err)
	}
	return call(cmd, http.MethodPost, args[0], params, body)
}

func call(cmd *cobra.Command, method, resourceName string, params netvisor.Params, body []byte) error {
	ctx := commandContext(cmd)
	defer current.client.Close()

	if raw {
		var data []byte
		var err error
		if method == http.MethodPost {
			data, err = current.client.Post(ctx, resourceName, params, body)
		} else {
			data, err = current.client.Get(ctx, resourceName, params)
		}
		if err != nil {
			return err
		}
		_, err = current.out.Write(data)
		return err
	}

	payload, err := current.client.Call(ctx, method, resourceName, params, body)
	if err != nil {
		return err
	}
	return writeYAML(current.out, payload)
}
