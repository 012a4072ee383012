package layout

import (
	"github.com/adaptivebank/genui/internal/behavior"
	"github.com/adaptivebank/genui/internal/traits"
)

// localized holds one string per supported locale.
type localized struct {
	en string
	tr string
}

func (l localized) forLocale(loc traits.Locale) string {
	if loc == traits.LocaleTR {
		return l.tr
	}
	return l.en
}

// heroTier selects which greeting copy the hero banner shows. Exactly one
// tier fires; higher tiers win.
type heroTier int

const (
	heroTierExplorer heroTier = iota
	heroTierFX
	heroTierTransfer
	heroTierDefault
)

type heroCopy struct {
	title    localized
	subtitle localized
}

var heroCopyByTier = map[heroTier]heroCopy{
	heroTierExplorer: {
		title:    localized{en: "Discover More Ways to Bank", tr: "Bankacılığın Daha Fazlasını Keşfedin"},
		subtitle: localized{en: "Picked for you based on what you explore", tr: "Gezdiğiniz sayfalara göre sizin için seçildi"},
	},
	heroTierFX: {
		title:    localized{en: "Your Exchange Hub", tr: "Döviz Merkeziniz"},
		subtitle: localized{en: "Rates and conversions at a glance", tr: "Kurlar ve çevrimler bir bakışta"},
	},
	heroTierTransfer: {
		title:    localized{en: "Fast Transfers", tr: "Hızlı Transferler"},
		subtitle: localized{en: "Send money in a few taps", tr: "Birkaç dokunuşla para gönderin"},
	},
	heroTierDefault: {
		title:    localized{en: "Welcome to Your Account", tr: "Hesabınıza Hoş Geldiniz"},
		subtitle: localized{en: "Your personalized banking experience", tr: "Kişiselleştirilmiş bankacılık deneyimi"},
	},
}

// actionLabels is the fixed quick-action label table.
var actionLabels = map[behavior.ActionID]localized{
	behavior.ActionTransfer:    {en: "Transfer", tr: "Transfer"},
	behavior.ActionPayBill:     {en: "Pay Bill", tr: "Fatura Öde"},
	behavior.ActionFX:          {en: "Exchange", tr: "Döviz"},
	behavior.ActionOpenSavings: {en: "Savings", tr: "Tasarruf"},
}

var (
	offersTitle = localized{en: "Set up Auto-Save", tr: "Otomatik Tasarruf Başlat"}
	offersBody  = localized{en: "Automatically save every month", tr: "Her ay otomatik olarak tasarruf edin"}
	offersCTA   = localized{en: "Get Started", tr: "Başlat"}
)
