package relayer

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/spf13/cobra"

	"github.com/storacha/sandbox/cmd/cliutil"
	"github.com/storacha/sandbox/pkg/funding"
	"github.com/storacha/sandbox/pkg/relayer"
)

var SendCmd = &cobra.Command{
	Use:     "send <to>",
	Short:   "Send a transaction through a relayer.",
	Args:    cobra.ExactArgs(1),
	Example: "sandbox relayer send 0x63c0c19a282a1B52b07dD5a65b58948A07DAE32B --value 100000000000000 --wait",
	RunE:    doSend,
}

func init() {
	SendCmd.Flags().Uint64("value", funding.DefaultValueWei, "Value in wei")
	SendCmd.Flags().String("data", "", "Hex encoded calldata")
	SendCmd.Flags().Uint64("gas-limit", funding.TransferGasLimit, "Gas limit")
	SendCmd.Flags().String("speed", string(relayer.SpeedFastest), "Fee tier: average, fast or fastest")
	addWaitFlags(SendCmd)
}

func addWaitFlags(cmd *cobra.Command) {
	cmd.Flags().Bool("wait", false, "Poll until the transaction is mined")
	cmd.Flags().Duration("poll-interval", relayer.DefaultPollInterval, "Interval between status polls")
	cmd.Flags().Int("max-polls", 0, "Give up after this many polls, zero polls until mined")
}

func doSend(cmd *cobra.Command, args []string) error {
	if !common.IsHexAddress(args[0]) {
		return fmt.Errorf("invalid address: %s", args[0])
	}
	value, _ := cmd.Flags().GetUint64("value")
	data, _ := cmd.Flags().GetString("data")
	gasLimit, _ := cmd.Flags().GetUint64("gas-limit")
	speedFlag, _ := cmd.Flags().GetString("speed")

	speed, err := relayer.ParseSpeed(speedFlag)
	if err != nil {
		return err
	}
	if data != "" {
		if _, err := hexutil.Decode(data); err != nil {
			return fmt.Errorf("invalid calldata: %w", err)
		}
	}

	client, cfg, err := newClient()
	if err != nil {
		return err
	}
	id, err := relayerID(cmd, client, cfg, nil)
	if err != nil {
		return err
	}

	res, err := client.SendTransaction(cmd.Context(), id, relayer.TransactionRequest{
		Value:    value,
		To:       common.HexToAddress(args[0]).Hex(),
		Data:     data,
		GasLimit: gasLimit,
		Speed:    speed,
	})
	if err != nil {
		return fmt.Errorf("sending transaction: %w", err)
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("sending transaction: %w", err)
	}
	if res.Data.ID == "" {
		return relayer.ErrEmptyTransactionID
	}
	printTx(cmd, res.Data)

	return maybeWait(cmd, client, id, res.Data.ID)
}

func maybeWait(cmd *cobra.Command, client relayer.Client, relayerID, txID string) error {
	wait, _ := cmd.Flags().GetBool("wait")
	if !wait {
		return nil
	}
	interval, _ := cmd.Flags().GetDuration("poll-interval")
	maxPolls, _ := cmd.Flags().GetInt("max-polls")

	start := time.Now()
	tx, err := relayer.WaitMined(cmd.Context(), client, relayerID, txID, relayer.PollOptions{
		Interval: interval,
		MaxPolls: maxPolls,
		OnPoll: func(attempt int, tx relayer.Transaction) {
			cliutil.Step("poll %d: %s (%s)", attempt, tx.Status, time.Since(start).Round(time.Second))
		},
	})
	if err != nil {
		return err
	}
	cliutil.Done("mined %s", tx.Hash)
	return nil
}
