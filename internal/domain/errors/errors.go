package errors

import (
	"fmt"
)

// ErrParse возникает, когда текст не подходит ни под один формат команды.
type ErrParse struct {
	Input  string
	Reason string
}

func (e *ErrParse) Error() string {
	if e.Reason != "" {
		return e.Reason
	}

	return "cannot parse command: " + e.Input
}

func (e *ErrParse) Is(target error) bool {
	_, ok := target.(*ErrParse)
	return ok
}

// ErrStateMismatch возникает, когда состояние диалога получило событие, которое не умеет обрабатывать.
type ErrStateMismatch struct {
	State   string
	Message string
}

func (e *ErrStateMismatch) Error() string {
	return fmt.Sprintf("%s: %s", e.State, e.Message)
}

func (e *ErrStateMismatch) Is(target error) bool {
	_, ok := target.(*ErrStateMismatch)
	return ok
}

type ErrUnknownCommand struct {
	Command string
}

func (e *ErrUnknownCommand) Error() string {
	return "Unknown command: " + e.Command
}

func (e *ErrUnknownCommand) Is(target error) bool {
	_, ok := target.(*ErrUnknownCommand)
	return ok
}

type ErrNoDialogState struct {
	UID int64
}

func (e *ErrNoDialogState) Error() string {
	return fmt.Sprintf("no /start processed for user %d", e.UID)
}

func (e *ErrNoDialogState) Is(target error) bool {
	_, ok := target.(*ErrNoDialogState)
	return ok
}

type ErrInternalLogic struct {
	Message string
}

func (e *ErrInternalLogic) Error() string {
	return e.Message
}

func (e *ErrInternalLogic) Is(target error) bool {
	_, ok := target.(*ErrInternalLogic)
	return ok
}

// ErrPersistence возникает, когда хранилище не смогло применить изменение.
type ErrPersistence struct {
	Operation string
}

func (e *ErrPersistence) Error() string {
	return "storage failure: " + e.Operation
}

func (e *ErrPersistence) Is(target error) bool {
	_, ok := target.(*ErrPersistence)
	return ok
}

type ErrUserNotFound struct {
	UID int64
}

func (e *ErrUserNotFound) Error() string {
	return fmt.Sprintf("пользователь не найден: %d", e.UID)
}

func (e *ErrUserNotFound) Is(target error) bool {
	_, ok := target.(*ErrUserNotFound)
	return ok
}

type ErrUserAlreadyExists struct {
	UID int64
}

func (e *ErrUserAlreadyExists) Error() string {
	return fmt.Sprintf("пользователь с ID %d уже существует", e.UID)
}

func (e *ErrUserAlreadyExists) Is(target error) bool {
	_, ok := target.(*ErrUserAlreadyExists)
	return ok
}

type ErrTemplateNotFound struct {
	ID int64
}

func (e *ErrTemplateNotFound) Error() string {
	return fmt.Sprintf("повторяющееся событие не найдено: %d", e.ID)
}

func (e *ErrTemplateNotFound) Is(target error) bool {
	_, ok := target.(*ErrTemplateNotFound)
	return ok
}

type ErrUnknownDBAccessType struct {
	AccessType string
}

func (e *ErrUnknownDBAccessType) Error() string {
	return fmt.Sprintf("неизвестный тип доступа к базе данных: %s", e.AccessType)
}

type ErrUnknownStorage struct {
	Backend string
}

func (e *ErrUnknownStorage) Error() string {
	return fmt.Sprintf("неизвестный тип хранилища: %s", e.Backend)
}

type ErrBuildSQLQuery struct {
	Operation string
	Cause     error
}

func (e *ErrBuildSQLQuery) Error() string {
	return fmt.Sprintf("ошибка при построении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrBuildSQLQuery) Unwrap() error {
	return e.Cause
}

type ErrSQLExecution struct {
	Operation string
	Cause     error
}

func (e *ErrSQLExecution) Error() string {
	return fmt.Sprintf("ошибка при выполнении SQL запроса для %s: %v", e.Operation, e.Cause)
}

func (e *ErrSQLExecution) Unwrap() error {
	return e.Cause
}

type ErrSQLScan struct {
	Entity string
	Cause  error
}

func (e *ErrSQLScan) Error() string {
	return fmt.Sprintf("ошибка при сканировании %s: %v", e.Entity, e.Cause)
}

func (e *ErrSQLScan) Unwrap() error {
	return e.Cause
}

// ErrMalformedInbound возникает, когда входящее управляющее сообщение не удалось разобрать.
type ErrMalformedInbound struct {
	Reason string
}

func (e *ErrMalformedInbound) Error() string {
	return "некорректное входящее сообщение: " + e.Reason
}

func (e *ErrMalformedInbound) Is(target error) bool {
	_, ok := target.(*ErrMalformedInbound)
	return ok
}

type ErrUnknownNotifier struct {
	Transport string
}

func (e *ErrUnknownNotifier) Error() string {
	return fmt.Sprintf("неизвестный тип нотификатора: %s", e.Transport)
}

type HTTPError struct {
	StatusCode int
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("HTTP error: %d", e.StatusCode)
}
