package blink

import "fmt"

// Network identifies a chain. Its genesis challenge is appended to every
// signed message so signatures cannot be replayed on another network.
type Network struct {
	Name             string
	GenesisChallenge Bytes32
	AddressPrefix    string
}

var Mainnet = Network{
	Name:             "mainnet",
	GenesisChallenge: MustBytes32("ccd5bb71183532bff220ba46c268991a3ff07eb358e8255a65c30a2dce0e5fbb"),
	AddressPrefix:    "xch",
}

var Testnet10 = Network{
	Name:             "testnet10",
	GenesisChallenge: MustBytes32("ae83525ba8d1dd3f09b277de18ca3e43fc0af20d20c4b3e92ef2a48bd291ccb2"),
	AddressPrefix:    "txch",
}

var networks = map[string]Network{
	Mainnet.Name:   Mainnet,
	Testnet10.Name: Testnet10,
}

func NetworkByName(name string) (Network, error) {
	if n, ok := networks[name]; ok {
		return n, nil
	}
	return Network{}, NewErr(BadRequest, "unknown network %q", name)
}

func (n Network) String() string {
	return fmt.Sprintf("%s (%s)", n.Name, n.GenesisChallenge)
}
