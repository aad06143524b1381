package protocol

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMissingCommand = errors.New("protocol: message has no command")
	ErrUnknownCommand = errors.New("protocol: unknown command")
)

var registry = map[Command]func([]byte) (Message, error){}

func register[T Message]() {
	var zero T
	registry[zero.Command()] = func(data []byte) (Message, error) {
		var m T
		if err := json.Unmarshal(data, &m); err != nil {
			return nil, err
		}
		return m, nil
	}
}

func init() {
	register[LoadFile]()
	register[SaveFile]()
	register[SaveContent]()
	register[ResolveImage]()
	register[RenameFile]()
	register[RequestRename]()
	register[GetVault]()
	register[CreateNote]()
	register[DeleteFile]()
	register[DuplicateFile]()
	register[MoveFile]()
	register[CreateFolder]()
	register[RenameFolder]()
	register[DeleteFolder]()
	register[MoveFolder]()
	register[FindFiles]()

	register[FileLoaded]()
	register[ResolvedImage]()
	register[RenameResult]()
	register[FolderMoveResult]()
	register[VaultStatus]()
	register[FileChanged]()
	register[SaveResult]()
	register[NoteCreated]()
	register[FileDeleted]()
	register[ShowMessage]()
	register[FoundFiles]()
}

// Decode parses one message. The returned value is the typed struct (not a
// pointer) registered for the message's command.
func Decode(data []byte) (Message, error) {
	var head struct {
		Command Command `json:"command"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("protocol: decode envelope: %w", err)
	}
	if head.Command == "" {
		return nil, ErrMissingCommand
	}
	decode, ok := registry[head.Command]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownCommand, head.Command)
	}
	m, err := decode(data)
	if err != nil {
		return nil, fmt.Errorf("protocol: decode %s: %w", head.Command, err)
	}
	return m, nil
}

// Encode renders m as a JSON object with its command first.
func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, ErrMissingCommand
	}
	payload, err := json.Marshal(m)
	if err != nil {
		return nil, fmt.Errorf("protocol: encode %s: %w", m.Command(), err)
	}
	cmd, err := json.Marshal(m.Command())
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.WriteString(`{"command":`)
	buf.Write(cmd)
	if body := bytes.TrimSpace(payload); len(body) > 2 {
		buf.WriteByte(',')
		buf.Write(body[1:])
	} else {
		buf.WriteByte('}')
	}
	return buf.Bytes(), nil
}
