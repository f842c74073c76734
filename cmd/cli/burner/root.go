package burner

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/storacha/sandbox/cmd/cliutil"
	"github.com/storacha/sandbox/pkg/burner"
)

var (
	Cmd = &cobra.Command{
		Use:   "burner",
		Short: "Manage throwaway accounts.",
	}
	NewCmd = &cobra.Command{
		Use:   "new",
		Short: "Generate a burner account.",
		Long: `Generates a random secp256k1 key and prints its address. The private key is
printed unless --out is given, in which case it is written to that file instead.`,
		Args: cobra.NoArgs,
		RunE: doNew,
	}
	AddressCmd = &cobra.Command{
		Use:     "address <key-file>",
		Short:   "Print the address of a stored burner key.",
		Args:    cobra.ExactArgs(1),
		Example: "sandbox burner address burner.key",
		RunE:    doAddress,
	}
)

func init() {
	NewCmd.Flags().String("out", "", "File to write the private key to")
	cobra.CheckErr(NewCmd.MarkFlagFilename("out"))

	Cmd.AddCommand(NewCmd)
	Cmd.AddCommand(AddressCmd)
}

func doNew(cmd *cobra.Command, _ []string) error {
	cred, err := burner.Generate()
	if err != nil {
		return err
	}

	out, err := cmd.Flags().GetString("out")
	if err != nil {
		return err
	}
	cmd.Println("Address:", cred.Address.Hex())
	if out == "" {
		cmd.Println("Private key:", cred.PrivateKeyHex())
		return nil
	}
	if err := cliutil.WritePrivateKeyFile(out, cred); err != nil {
		return err
	}
	cmd.Println("Private key written to", out)
	return nil
}

func doAddress(cmd *cobra.Command, args []string) error {
	cred, err := cliutil.ReadPrivateKeyFile(args[0])
	if err != nil {
		return fmt.Errorf("loading burner: %w", err)
	}
	cmd.Println(cred.Address.Hex())
	return nil
}
