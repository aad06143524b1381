package protocol

// Command is the discriminator carried in the "command" field.
type Command string

// Message is implemented by every typed payload.
type Message interface {
	Command() Command
}

// Rename sources.
const (
	SourceEditorTitle = "editorTitle"
	SourceContextMenu = "contextMenu"
	SourceMove        = "move"
)

// Core to host.
const (
	CmdLoadFile      Command = "loadFile"
	CmdSaveFile      Command = "saveFile"
	CmdSaveContent   Command = "saveContent"
	CmdResolveImage  Command = "resolveImage"
	CmdRenameFile    Command = "renameFile"
	CmdRequestRename Command = "requestRename"
	CmdGetVault      Command = "getVault"
	CmdCreateNote    Command = "createNote"
	CmdDeleteFile    Command = "deleteFile"
	CmdDuplicateFile Command = "duplicateFile"
	CmdMoveFile      Command = "moveFile"
	CmdCreateFolder  Command = "createFolder"
	CmdRenameFolder  Command = "renameFolder"
	CmdDeleteFolder  Command = "deleteFolder"
	CmdMoveFolder    Command = "moveFolder"
	CmdFindFiles     Command = "findFiles"
)

// Host to core.
const (
	CmdFileLoaded       Command = "fileLoaded"
	CmdResolvedImage    Command = "resolvedImage"
	CmdRenameResult     Command = "renameResult"
	CmdFolderMoveResult Command = "folderMoveResult"
	CmdVaultStatus      Command = "vaultStatus"
	CmdFileChanged      Command = "fileChanged"
	CmdSaveResult       Command = "saveResult"
	CmdNoteCreated      Command = "noteCreated"
	CmdFileDeleted      Command = "fileDeleted"
	CmdShowMessage      Command = "showMessage"
	CmdFoundFiles       Command = "foundFiles"
)

type LoadFile struct {
	FileName string `json:"fileName"`
}

// SaveFile persists a named note.
type SaveFile struct {
	FileName   string `json:"fileName"`
	Content    string `json:"content"`
	IsAutoSave bool   `json:"isAutoSave"`
}

// SaveContent persists the note the host associated with the editor.
type SaveContent struct {
	Content    string `json:"content"`
	IsAutoSave bool   `json:"isAutoSave"`
}

// ResolveImage asks the host for a displayable URI of a local image.
// FileName is the vault-relative note the reference appears in.
type ResolveImage struct {
	RequestID uint64 `json:"requestId"`
	ImagePath string `json:"imagePath"`
	FileName  string `json:"fileName"`
	FilePath  string `json:"filePath"`
}

type RenameFile struct {
	OldName string `json:"oldName"`
	NewName string `json:"newName"`
	Source  string `json:"source"`
}

// RequestRename renames FileName to the display title NewName; the host
// cleans the title and keeps the note's folder.
type RequestRename struct {
	FileName string `json:"fileName"`
	NewName  string `json:"newName"`
	Source   string `json:"source"`
}

type GetVault struct{}

type CreateNote struct {
	Title  string `json:"title,omitempty"`
	Folder string `json:"folder,omitempty"`
}

type DeleteFile struct {
	FileName string `json:"fileName"`
}

type DuplicateFile struct {
	FileName string `json:"fileName"`
}

type MoveFile struct {
	FileName     string `json:"fileName"`
	TargetFolder string `json:"targetFolder"`
}

type CreateFolder struct {
	ParentFolder string `json:"parentFolder"`
	Name         string `json:"name"`
}

type RenameFolder struct {
	FolderPath string `json:"folderPath"`
	NewName    string `json:"newName"`
}

type DeleteFolder struct {
	FolderPath string `json:"folderPath"`
}

type MoveFolder struct {
	FolderPath   string `json:"folderPath"`
	TargetFolder string `json:"targetFolder"`
}

type FindFiles struct {
	Query string `json:"query"`
	Limit int    `json:"limit,omitempty"`
}

type FileLoaded struct {
	FileName string `json:"fileName"`
	FilePath string `json:"filePath"`
	Content  string `json:"content"`
}

// ResolvedImage answers ResolveImage. A nil URI means the image could not be
// resolved; the preview keeps its placeholder.
type ResolvedImage struct {
	RequestID uint64  `json:"requestId"`
	URI       *string `json:"uri"`
	Width     int     `json:"width,omitempty"`
	Height    int     `json:"height,omitempty"`
}

type RenameResult struct {
	Success bool   `json:"success"`
	OldName string `json:"oldName,omitempty"`
	NewName string `json:"newName,omitempty"`
	Error   string `json:"error,omitempty"`
	Source  string `json:"source,omitempty"`
}

type FolderMoveResult struct {
	Success bool   `json:"success"`
	OldPath string `json:"oldPath,omitempty"`
	NewPath string `json:"newPath,omitempty"`
	Error   string `json:"error,omitempty"`
}

// FileEntry is one note of a vault listing.
type FileEntry struct {
	Name string `json:"name"`
	Path string `json:"path"`
}

type VaultStatus struct {
	VaultPath string      `json:"vaultPath"`
	Files     []FileEntry `json:"files"`
	Folders   []string    `json:"folders"`
}

// FileChanged notifies the core that a note changed on disk.
type FileChanged struct {
	FileName string `json:"fileName"`
}

type SaveResult struct {
	FileName   string `json:"fileName"`
	Success    bool   `json:"success"`
	IsAutoSave bool   `json:"isAutoSave"`
	Error      string `json:"error,omitempty"`
}

type NoteCreated struct {
	FileName string `json:"fileName"`
	Content  string `json:"content"`
}

type FileDeleted struct {
	FileName string `json:"fileName"`
}

// Notice levels of ShowMessage.
const (
	LevelInfo  = "info"
	LevelError = "error"
)

type ShowMessage struct {
	Level string `json:"level"`
	Text  string `json:"text"`
}

type FoundFiles struct {
	Query string      `json:"query"`
	Files []FileEntry `json:"files"`
}

func (LoadFile) Command() Command      { return CmdLoadFile }
func (SaveFile) Command() Command      { return CmdSaveFile }
func (SaveContent) Command() Command   { return CmdSaveContent }
func (ResolveImage) Command() Command  { return CmdResolveImage }
func (RenameFile) Command() Command    { return CmdRenameFile }
func (RequestRename) Command() Command { return CmdRequestRename }
func (GetVault) Command() Command      { return CmdGetVault }
func (CreateNote) Command() Command    { return CmdCreateNote }
func (DeleteFile) Command() Command    { return CmdDeleteFile }
func (DuplicateFile) Command() Command { return CmdDuplicateFile }
func (MoveFile) Command() Command      { return CmdMoveFile }
func (CreateFolder) Command() Command  { return CmdCreateFolder }
func (RenameFolder) Command() Command  { return CmdRenameFolder }
func (DeleteFolder) Command() Command  { return CmdDeleteFolder }
func (MoveFolder) Command() Command    { return CmdMoveFolder }
func (FindFiles) Command() Command     { return CmdFindFiles }

func (FileLoaded) Command() Command       { return CmdFileLoaded }
func (ResolvedImage) Command() Command    { return CmdResolvedImage }
func (RenameResult) Command() Command     { return CmdRenameResult }
func (FolderMoveResult) Command() Command { return CmdFolderMoveResult }
func (VaultStatus) Command() Command      { return CmdVaultStatus }
func (FileChanged) Command() Command      { return CmdFileChanged }
func (SaveResult) Command() Command       { return CmdSaveResult }
func (NoteCreated) Command() Command      { return CmdNoteCreated }
func (FileDeleted) Command() Command      { return CmdFileDeleted }
func (ShowMessage) Command() Command      { return CmdShowMessage }
func (FoundFiles) Command() Command       { return CmdFoundFiles }
