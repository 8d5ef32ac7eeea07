package model

// FolderKind is the enumerated mailbox category reported by the server.
type FolderKind string

const (
	FolderInbox   FolderKind = "inbox"
	FolderSent    FolderKind = "sent"
	FolderDrafts  FolderKind = "drafts"
	FolderStarred FolderKind = "starred"
	FolderArchive FolderKind = "archive"
	FolderCustom  FolderKind = "custom"
)

// folderLabels maps built-in kinds to their display labels.
var folderLabels = map[FolderKind]string{
	FolderInbox:   "Inbox",
	FolderSent:    "Sent",
	FolderDrafts:  "Drafts",
	FolderStarred: "Starred",
	FolderArchive: "Archive",
	FolderCustom:  "Custom folder",
}

// Valid reports whether k is one of the known folder kinds.
func (k FolderKind) Valid() bool {
	_, ok := folderLabels[k]
	return ok
}

// Folder is a mailbox as listed by GET /api/mailboxes.
type Folder struct {
	ID        int64      `json:"id"`
	Name      string     `json:"name"`
	Kind      FolderKind `json:"kind"`
	CreatedAt int64      `json:"createdAt"`
}

// DisplayName returns the label shown in the folder list. Custom folders
// use their own name; built-in folders use the fixed label.
func (f Folder) DisplayName() string {
	if f.Kind == FolderCustom {
		if f.Name != "" {
			return f.Name
		}
		return folderLabels[FolderCustom]
	}
	if label, ok := folderLabels[f.Kind]; ok {
		return label
	}
	return f.Name
}

// Ref returns the selection reference identifying this folder.
func (f Folder) Ref() FolderRef {
	ref := FolderRef{Kind: f.Kind, Name: f.DisplayName()}
	if f.Kind == FolderCustom {
		ref.Custom = f.Name
	}
	return ref
}

// FolderRef identifies the currently selected folder. Custom is only set
// for custom folders and is sent as the "custom" query parameter.
type FolderRef struct {
	Kind   FolderKind
	Custom string
	Name   string
}

// Matches reports whether the reference points at folder f. Identity is
// the kind, plus the name for custom folders.
func (r FolderRef) Matches(f Folder) bool {
	if r.Kind != f.Kind {
		return false
	}
	return f.Kind != FolderCustom || r.Custom == f.Name
}

// Title is the heading shown above the message list.
func (r FolderRef) Title() string {
	if r.Name != "" {
		return r.Name
	}
	return string(r.Kind)
}

// KindLabel returns the label for a message's folder placement.
func KindLabel(kind FolderKind, customName string) string {
	if kind == FolderCustom {
		if customName != "" {
			return customName
		}
		return folderLabels[FolderCustom]
	}
	if label, ok := folderLabels[kind]; ok {
		return label
	}
	return string(kind)
}
