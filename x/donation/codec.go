package donation

import (
	matching "github.com/ryancwalsh/donation-matching"
	amino "github.com/tendermint/go-amino"
)

var cdc = amino.NewCodec()

func init() {
	matching.RegisterCodec(cdc)
	RegisterCodec(cdc)
}

// RegisterCodec registers all messages of this extension, so that they can
// be serialized as a matching.Msg. The host needs this to store
// confirmation callbacks.
func RegisterCodec(cdc *amino.Codec) {
	cdc.RegisterConcrete(&OfferMatchingFundsMsg{}, pathOfferMatchingFunds, nil)
	cdc.RegisterConcrete(&RescindMatchingFundsMsg{}, pathRescindMatchingFunds, nil)
	cdc.RegisterConcrete(&DonateMsg{}, pathDonate, nil)
	cdc.RegisterConcrete(&SetMatcherAmountMsg{}, pathSetMatcherAmount, nil)
	cdc.RegisterConcrete(&OnDonationConfirmedMsg{}, pathOnDonationConfirmed, nil)
}
