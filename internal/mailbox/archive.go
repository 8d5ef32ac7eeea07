package mailbox

import (
	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/nhle/mailclient/internal/model"
)

// ArchiveGroups collects the distinct non-empty archive groups of the
// loaded messages and the open one, sorted for locale. The result only
// feeds input suggestions; any free-text group is accepted.
func ArchiveGroups(messages []model.Message, selected *model.Message, locale language.Tag) []string {
	seen := make(map[string]struct{})
	var groups []string
	add := func(g string) {
		if g == "" {
			return
		}
		if _, ok := seen[g]; ok {
			return
		}
		seen[g] = struct{}{}
		groups = append(groups, g)
	}

	for _, m := range messages {
		add(m.ArchiveGroup)
	}
	if selected != nil {
		add(selected.ArchiveGroup)
	}

	collate.New(locale).SortStrings(groups)
	return groups
}
