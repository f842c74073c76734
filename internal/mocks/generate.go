package mocks

//go:generate mockgen -destination=./relayer.go -package=mocks -mock_names=Client=MockRelayerClient github.com/storacha/sandbox/pkg/relayer Client
//go:generate mockgen -destination=./chain.go -package=mocks -mock_names=Client=MockChainClient github.com/storacha/sandbox/pkg/chain Client
