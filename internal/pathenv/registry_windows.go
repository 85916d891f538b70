//go:build windows

package pathenv

import (
	"errors"
	"sync"
	"unsafe"

	"golang.org/x/sys/windows"
	"golang.org/x/sys/windows/registry"
)

const (
	environmentKey = `Environment`
	pathValueName  = "Path"

	hwndBroadcast    = 0xffff
	wmSettingChange  = 0x001A
	smtoAbortIfHung  = 0x0002
	broadcastTimeout = 5000
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSendMessageTimeoutW = user32.NewProc("SendMessageTimeoutW")
)

// RegistryStore persists PATH in HKCU\Environment. The value type seen on the
// last Read is kept on Write so %VAR% references stay expandable.
type RegistryStore struct {
	key string

	mu        sync.Mutex
	valueType uint32
}

func NewRegistryStore() *RegistryStore {
	return newRegistryStoreAt(environmentKey)
}

// newRegistryStoreAt keeps Path under another HKCU subkey.
func newRegistryStoreAt(key string) *RegistryStore {
	return &RegistryStore{key: key, valueType: registry.EXPAND_SZ}
}

func (s *RegistryStore) Read() (string, error) {
	k, err := registry.OpenKey(registry.CURRENT_USER, s.key, registry.QUERY_VALUE)
	if errors.Is(err, registry.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}
	defer k.Close()

	// A user without a personal Path has no value yet; Write creates it.
	v, typ, err := k.GetStringValue(pathValueName)
	if errors.Is(err, registry.ErrNotExist) {
		return "", nil
	}
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.valueType = typ
	s.mu.Unlock()
	return v, nil
}

func (s *RegistryStore) Write(value string) error {
	k, _, err := registry.CreateKey(registry.CURRENT_USER, s.key, registry.SET_VALUE)
	if err != nil {
		return err
	}
	defer k.Close()

	s.mu.Lock()
	typ := s.valueType
	s.mu.Unlock()

	if typ == registry.SZ {
		err = k.SetStringValue(pathValueName, value)
	} else {
		err = k.SetExpandStringValue(pathValueName, value)
	}
	if err != nil {
		return err
	}

	// Running shells keep their own copy; Explorer picks up the change once
	// notified so new consoles see it without a logoff.
	if s.key == environmentKey {
		_ = broadcastEnvironmentChange()
	}
	return nil
}

func broadcastEnvironmentChange() error {
	if err := procSendMessageTimeoutW.Find(); err != nil {
		return err
	}
	param, err := windows.UTF16PtrFromString(environmentKey)
	if err != nil {
		return err
	}
	var result uintptr
	ret, _, callErr := procSendMessageTimeoutW.Call(
		hwndBroadcast,
		wmSettingChange,
		0,
		uintptr(unsafe.Pointer(param)),
		smtoAbortIfHung,
		broadcastTimeout,
		uintptr(unsafe.Pointer(&result)),
	)
	if ret == 0 {
		if callErr != nil && !errors.Is(callErr, windows.ERROR_SUCCESS) {
			return callErr
		}
		return errors.New("SendMessageTimeoutW failed")
	}
	return nil
}
