package ioc

import (
	"github.com/ego-component/egorm"
)

// InitDB 从配置的 mysql 段构建数据库组件
func InitDB() *egorm.Component {
	return egorm.Load("mysql").Build()
}
