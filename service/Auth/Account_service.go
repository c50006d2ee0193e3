package Auth

import (
	"errors"
	"fmt"
	"log"
	"strings"

	ChatService "panote/service/Chat"
	NoteService "panote/service/Note"
	TagService "panote/service/Tag"
)

// AccountServiceInterface 账号注销服务接口
type AccountServiceInterface interface {
	// DeleteAccount 删除用户的全部数据
	// 笔记、标签、聊天记录三项独立删除，任一失败则汇总所有失败原因返回，
	// 且不继续删除身份记录。身份删除仅在配置了服务级凭证时尝试，
	// 失败只记日志——数据删除是保证项，身份删除是尽力而为
	DeleteAccount(userID uint) error
}

var GlobalAccountService AccountServiceInterface

type accountService struct {
	userService    UserService
	noteService    NoteService.NoteServiceInterface
	tagService     TagService.TagServiceInterface
	messageService ChatService.MessageServiceInterface
	serviceKey     string
}

func NewAccountService(
	userService UserService,
	noteService NoteService.NoteServiceInterface,
	tagService TagService.TagServiceInterface,
	messageService ChatService.MessageServiceInterface,
	serviceKey string,
) (AccountServiceInterface, error) {
	if userService == nil || noteService == nil || tagService == nil || messageService == nil {
		return nil, errors.New("依赖的服务不能为空")
	}
	service := &accountService{
		userService:    userService,
		noteService:    noteService,
		tagService:     tagService,
		messageService: messageService,
		serviceKey:     serviceKey,
	}
	GlobalAccountService = service
	return service, nil
}

// DeleteAccount 注销账号
func (s *accountService) DeleteAccount(userID uint) error {
	if userID == 0 {
		return errors.New("用户ID不能为空")
	}

	// 三项数据独立删除，全部执行后再汇总错误
	var failures []string
	if err := s.noteService.DeleteUserNotes(userID); err != nil {
		failures = append(failures, fmt.Sprintf("删除笔记失败: %v", err))
	}
	if err := s.tagService.DeleteUserTags(userID); err != nil {
		failures = append(failures, fmt.Sprintf("删除标签失败: %v", err))
	}
	if err := s.messageService.DeleteUserMessages(userID); err != nil {
		failures = append(failures, fmt.Sprintf("删除聊天记录失败: %v", err))
	}

	if len(failures) > 0 {
		return errors.New(strings.Join(failures, "; "))
	}

	// 身份删除需要服务级凭证，失败不阻塞注销流程
	if s.serviceKey == "" {
		log.Printf("未配置服务级凭证，跳过用户 %d 的身份记录删除", userID)
		return nil
	}
	if err := s.userService.DeleteUser(userID); err != nil {
		log.Printf("删除用户 %d 身份记录失败: %v", userID, err)
	}
	return nil
}
